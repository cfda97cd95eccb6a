package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// pingTimeout is the maximum time to wait for one connectivity check.
const pingTimeout = 5 * time.Second

// Check is the outcome of pinging one role's endpoint.
type Check struct {
	Role  domain.ModelRole
	Model string
	Err   error
}

// Validate pings every configured endpoint. It returns one Check per role
// and a joined error for the failures.
func Validate(ctx context.Context, s *Services) ([]Check, error) {
	type pinger interface {
		Ping(context.Context) error
		ModelName() string
	}
	targets := []struct {
		role domain.ModelRole
		svc  pinger
	}{
		{domain.RoleOCR, s.OCR},
		{domain.RoleQA, s.QA},
		{domain.RoleEmbed, s.Embed},
	}

	checks := make([]Check, 0, len(targets))
	var errs []error
	for _, t := range targets {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := t.svc.Ping(pctx)
		cancel()
		if err != nil {
			err = domain.ClassifyExternal(fmt.Sprintf("%s model %s", t.role, t.svc.ModelName()), err)
			errs = append(errs, err)
		}
		checks = append(checks, Check{Role: t.role, Model: t.svc.ModelName(), Err: err})
	}
	return checks, errors.Join(errs...)
}
