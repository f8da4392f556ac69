package authcore

import (
	"context"
	"errors"
)

// Signup creates the User row and its linked Auth row as a single atomic
// unit against the credential store. A duplicate email surfaces as
// [ErrEmailExists]; any other store failure propagates unchanged. The created
// user is returned without tokens; signup does not imply login.
func (c *Core) Signup(ctx context.Context, input SignupInput) (*User, error) {
	if c == nil || c.hasher == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}

	hash, err := c.hasher.Hash(input.Password)
	if err != nil {
		return nil, internalErr(err)
	}
	input.Password = ""

	user := &User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		BusinessName: input.BusinessName,
		CountryCode:  input.CountryCode,
		Status:       AccountActive,
	}

	created, err := c.store.CreateUserWithAuth(ctx, user, hash)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.metricInc(MetricSignupConflict)
			return nil, ErrEmailExists
		}
		return nil, internalErr(err)
	}

	c.metricInc(MetricSignupSuccess)
	return created, nil
}
