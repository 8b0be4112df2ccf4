package order

import (
	"fmt"
	"strings"
)

// Relation describes how an order relates to a subscription.
type Relation string

const (
	RelationParent      Relation = "parent"
	RelationRenewal     Relation = "renewal"
	RelationResubscribe Relation = "resubscribe"
	RelationSwitch      Relation = "switch"

	// RelationAny expands to the union of all concrete relation types.
	RelationAny Relation = "any"
)

var ValidRelations = map[Relation]bool{
	RelationParent:      true,
	RelationRenewal:     true,
	RelationResubscribe: true,
	RelationSwitch:      true,
	RelationAny:         true,
}

// ConcreteRelations lists every relation RelationAny expands to.
var ConcreteRelations = []Relation{RelationParent, RelationRenewal, RelationResubscribe, RelationSwitch}

func ParseRelation(value string) (Relation, error) {
	rel := Relation(strings.ToLower(strings.TrimSpace(value)))
	if !ValidRelations[rel] {
		return "", fmt.Errorf("invalid order relation: %s", value)
	}
	return rel, nil
}

func (r Relation) String() string {
	return string(r)
}

// ExpandRelations normalizes a relation set: empty and "any" both expand to
// all concrete relations, duplicates collapse.
func ExpandRelations(relations []Relation) []Relation {
	if len(relations) == 0 {
		return ConcreteRelations
	}

	seen := make(map[Relation]bool, len(relations))
	out := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		if rel == RelationAny {
			return ConcreteRelations
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	return out
}
