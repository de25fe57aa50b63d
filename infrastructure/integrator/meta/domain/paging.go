package metadomain

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors  Cursors `json:"cursors"`
	Next     string  `json:"next,omitempty"`
	Previous string  `json:"previous,omitempty"`
}

// EdgeResponse é a resposta de uma aresta (lista) da Graph API
type EdgeResponse struct {
	Data   []map[string]interface{} `json:"data"`
	Paging *Paging                  `json:"paging,omitempty"`
}

// HasNext indica se existe mais uma página a buscar
func (r *EdgeResponse) HasNext() bool {
	return r.Paging != nil && r.Paging.Next != ""
}
