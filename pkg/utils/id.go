package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const idSize = 12

// GenerateID devolve um id aleatório com o prefixo informado (ex.: load_Ab12Cd34Ef56)
func GenerateID(prefix string) (string, error) {
	id, err := gonanoid.Generate(characters, idSize)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return id, nil
	}
	return prefix + "_" + id, nil
}
