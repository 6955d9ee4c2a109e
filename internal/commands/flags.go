package commands

import (
	"github.com/spf13/pflag"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

// activityValue is a pflag.Value accepting any activity spelling the
// parser knows
type activityValue models.ActivityType

var _ pflag.Value = (*activityValue)(nil)

func newActivityValue(def models.ActivityType, p *models.ActivityType) *activityValue {
	*p = def
	return (*activityValue)(p)
}

func (a *activityValue) String() string {
	return string(*a)
}

func (a *activityValue) Set(s string) error {
	t, err := parser.ParseActivityType(s)
	if err != nil {
		return err
	}
	*a = activityValue(t)
	return nil
}

func (a *activityValue) Type() string {
	return "activity"
}

// roleValue is a pflag.Value for employee/admin
type roleValue models.Role

var _ pflag.Value = (*roleValue)(nil)

func newRoleValue(def models.Role, p *models.Role) *roleValue {
	*p = def
	return (*roleValue)(p)
}

func (r *roleValue) String() string {
	return string(*r)
}

func (r *roleValue) Set(s string) error {
	role, err := parser.ParseRole(s)
	if err != nil {
		return err
	}
	*r = roleValue(role)
	return nil
}

func (r *roleValue) Type() string {
	return "role"
}
