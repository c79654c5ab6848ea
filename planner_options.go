package graphql

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jensneuse/abstractlogger"

	"github.com/mrsunboss/apollo-server/schema"
)

// PlannerOptions configures a Planner at construction time. It is the only
// configuration surface the planner has: there is no environment variable
// or file it reads from.
type PlannerOptions struct {
	// Schema is the composed, federation-annotated schema every Plan call
	// routes fields against.
	Schema *schema.Schema `validate:"required"`

	// Logger receives diagnostic tracing of routing decisions. Defaults to
	// abstractlogger.NoopLogger when left nil.
	Logger abstractlogger.Logger
}

var (
	optionsValidatorOnce sync.Once
	optionsValidator     *validator.Validate
)

func getOptionsValidator() *validator.Validate {
	optionsValidatorOnce.Do(func() {
		optionsValidator = validator.New()
	})
	return optionsValidator
}

func (o PlannerOptions) validate() error {
	if err := getOptionsValidator().Struct(o); err != nil {
		return fmt.Errorf("graphql: invalid planner options: %w", err)
	}
	return nil
}
