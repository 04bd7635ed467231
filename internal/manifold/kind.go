package manifold

import (
	"fmt"
	"strings"

	"github.com/san-kum/liesim/internal/dynamo"
)

// Kind selects a homogeneous manifold.
type Kind int

const (
	Sphere Kind = iota
	HeavyTop
	SphericalPendulum
)

var kindIDs = map[Kind]string{
	Sphere:            "hmnsphere",
	HeavyTop:          "heavytop",
	SphericalPendulum: "sphericalpendulum",
}

var kindDescriptions = map[Kind]string{
	Sphere:            "unit n-sphere under SO(n); closed forms for n = 3",
	HeavyTop:          "heavy top state (mu, beta) in R6 under the coadjoint action of SE(3)",
	SphericalPendulum: "N spherical pendula (q_i, omega_i) in R6N under SE(3)^N",
}

func (k Kind) String() string {
	if id, ok := kindIDs[k]; ok {
		return id
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps an identifier such as "hmnsphere" to its Kind.
func ParseKind(s string) (Kind, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindIDs {
		if name == id {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, dynamo.ErrUnknownManifold)
}

// Info describes a supported manifold.
type Info struct {
	ID          string
	Description string
}

// Infos lists the supported manifolds in a stable order.
func Infos() []Info {
	kinds := []Kind{Sphere, HeavyTop, SphericalPendulum}
	out := make([]Info, len(kinds))
	for i, k := range kinds {
		out[i] = Info{ID: k.String(), Description: kindDescriptions[k]}
	}
	return out
}
