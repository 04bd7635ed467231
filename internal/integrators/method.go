package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/liesim/internal/dynamo"
)

// Method selects an RKMK scheme.
type Method int

const (
	EulerLie Method = iota
	ImprovedEulerLie
	SSPRKMK3
	RKMK4
)

var methodIDs = map[Method]string{
	EulerLie:         "E1",
	ImprovedEulerLie: "E2",
	SSPRKMK3:         "SSPRKMK3",
	RKMK4:            "RKMK4",
}

func (m Method) String() string {
	if id, ok := methodIDs[m]; ok {
		return id
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Tableau returns the Butcher tableau behind the method.
func (m Method) Tableau() (Tableau, error) {
	switch m {
	case EulerLie:
		return eulerLie, nil
	case ImprovedEulerLie:
		return improvedEulerLie, nil
	case SSPRKMK3:
		return ssprkmk3, nil
	case RKMK4:
		return rkmk4, nil
	}
	return Tableau{}, fmt.Errorf("%v: %w", m, dynamo.ErrUnknownMethod)
}

// ParseMethod maps an identifier such as "RKMK4" to its Method.
func ParseMethod(s string) (Method, error) {
	id := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range methodIDs {
		if name == id {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, dynamo.ErrUnknownMethod)
}

type Info struct {
	ID     string
	Name   string
	Stages int
	Order  int
}

// Infos lists the supported methods in a stable order.
func Infos() []Info {
	methods := []Method{EulerLie, ImprovedEulerLie, SSPRKMK3, RKMK4}
	out := make([]Info, 0, len(methods))
	for _, m := range methods {
		tab, _ := m.Tableau()
		out = append(out, Info{ID: m.String(), Name: tab.Name, Stages: tab.Stages(), Order: tab.Order})
	}
	return out
}
