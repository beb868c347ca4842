package authz

import (
	"embed"
	"os"
	"path/filepath"

	"staygrow/models"

	"github.com/casbin/casbin/v3"
	"github.com/rs/zerolog/log"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

// Objects and actions of the role policy.
const (
	ObjShowcase = "showcase"
	ObjAppeal   = "appeal"
	ObjUpload   = "upload"

	ActCreate    = "create"
	ActEngage    = "engage"
	ActAppeal    = "appeal"
	ActModerate  = "moderate"
	ActDeleteAny = "delete_any"
	ActList      = "list"
	ActResolve   = "resolve"
)

// Enforcer answers role permission questions from the embedded RBAC policy.
// Ownership checks stay with the store; this only covers what a role may attempt.
type Enforcer struct {
	e *casbin.Enforcer
}

func NewEnforcer() (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "staygrow-casbin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, err
	}
	return &Enforcer{e: e}, nil
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// Can reports whether viewer's role may perform act on obj.
// Anonymous viewers hold no permissions.
func (e *Enforcer) Can(viewer models.Viewer, obj, act string) (bool, error) {
	switch v := viewer.(type) {
	case models.Identified:
		allowed, err := e.e.Enforce(string(v.Role), obj, act)
		log.Debug().Str("role", string(v.Role)).Str("obj", obj).Str("act", act).Bool("allowed", allowed).Msg("authz")
		return allowed, err
	default:
		return false, nil
	}
}
