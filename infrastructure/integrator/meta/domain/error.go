package metadomain

import "fmt"

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// APIError é devolvido para qualquer resposta não-200 da Graph API
type APIError struct {
	StatusCode int
	Path       string
	Details    ErrorDetails
}

func (e *APIError) Error() string {
	msg := e.Details.Message
	if msg == "" {
		msg = "resposta sem corpo de erro"
	}
	return fmt.Sprintf("meta api: %s (status: %d, code: %d, subcode: %d, type: %s, fbtrace_id: %s, path: %s)",
		msg, e.StatusCode, e.Details.Code, e.Details.ErrorSubcode, e.Details.Type, e.Details.FBTraceID, e.Path)
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *APIError) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Details.Code == 190 ||
		(e.Details.Type == "OAuthException" && (e.Details.ErrorSubcode == 460 || e.Details.ErrorSubcode == 463 || e.Details.ErrorSubcode == 467))
}

// IsRateLimited verifica os códigos de limite de chamadas da Marketing API
func (e *APIError) IsRateLimited() bool {
	switch e.Details.Code {
	case 4, 17, 32, 613, 80000, 80003, 80004, 80014:
		return true
	}
	return false
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404 || (e.Details.Code == 100 && e.Details.ErrorSubcode == 33)
}
