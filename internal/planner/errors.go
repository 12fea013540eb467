package planner

import (
	"errors"
	"fmt"

	"weekly-planner/internal/meal"
)

var (
	// ErrNoEligibleOption is returned when the protein filter leaves no option
	// to choose from.
	ErrNoEligibleOption = errors.New("no eligible option")
	ErrInvalidDay       = errors.New("invalid day index")
	ErrUnknownMealType  = errors.New("unknown meal type")
	// ErrForeignOption is returned when assigning an option that is not part
	// of the meal type's pool.
	ErrForeignOption = errors.New("option does not belong to meal type")
)

// NoEligibleOptionError names the meal type whose eligible pool is empty.
type NoEligibleOptionError struct {
	MealType meal.Type
}

func (e *NoEligibleOptionError) Error() string {
	return fmt.Sprintf("%s: %v", e.MealType, ErrNoEligibleOption)
}

func (e *NoEligibleOptionError) Is(target error) bool {
	return target == ErrNoEligibleOption
}

// Warning is a non-blocking notice for the user.
type Warning struct {
	MealType meal.Type `json:"meal_type"`
	Message  string    `json:"message"`
}

func noOptionWarning(t meal.Type) Warning {
	return Warning{
		MealType: t,
		Message:  fmt.Sprintf("Não temos opção de %s com as proteínas selecionadas.", t.Label()),
	}
}

// WarningFor converts a no-eligible-option error into the user facing warning.
func WarningFor(err error) (Warning, bool) {
	var e *NoEligibleOptionError
	if errors.As(err, &e) {
		return noOptionWarning(e.MealType), true
	}
	return Warning{}, false
}
