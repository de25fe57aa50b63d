package domain

import (
	"fmt"
	"strings"
)

// Entity identifica um tipo de entidade extraída da API de anúncios
type Entity string

const (
	Account   Entity = "account"
	Campaign  Entity = "campaigns"
	AdSet     Entity = "adsets"
	Ad        Entity = "ads"
	AdInsight Entity = "ad_insights"
)

// Entities devolve todos os tipos na ordem em que o job os processa
func Entities() []Entity {
	return []Entity{Account, Campaign, AdSet, Ad, AdInsight}
}

func (e Entity) String() string {
	return string(e)
}

// TableSuffix é o sufixo da tabela de destino ({schema}.{prefix}_{suffix})
func (e Entity) TableSuffix() string {
	switch e {
	case Account:
		return "accounts"
	default:
		return string(e)
	}
}

// Fields devolve uma cópia da lista de campos registrada para a entidade
func (e Entity) Fields() []string {
	fields, ok := registry[e]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Edge é a aresta da conta usada para listar as entidades filhas.
// Vazio para a própria conta.
func (e Entity) Edge() string {
	switch e {
	case Campaign:
		return "campaigns"
	case AdSet:
		return "adsets"
	case Ad, AdInsight:
		return "ads"
	default:
		return ""
	}
}

func (e Entity) Valid() bool {
	_, ok := registry[e]
	return ok
}

// ParseEntities converte nomes em entidades, mantendo a ordem canônica.
// Lista vazia significa todas.
func ParseEntities(names []string) ([]Entity, error) {
	if len(names) == 0 {
		return Entities(), nil
	}

	selected := make(map[Entity]bool, len(names))
	for _, name := range names {
		entity := Entity(strings.ToLower(strings.TrimSpace(name)))
		if entity == "" {
			continue
		}
		if !entity.Valid() {
			return nil, fmt.Errorf("entidade desconhecida: %q", name)
		}
		selected[entity] = true
	}

	entities := make([]Entity, 0, len(selected))
	for _, entity := range Entities() {
		if selected[entity] {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}
