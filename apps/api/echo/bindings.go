package echoapi

import "github.com/stemcert/backend/core"

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	// ScoreCardRequest selects the level whose score card should be emailed.
	ScoreCardRequest struct {
		Level int `json:"level" validate:"required,min=1,max=3"`
	}

	ReminderRequest struct {
		Level   int    `json:"level" validate:"required,min=1,max=3"`
		Email   string `json:"email" validate:"required,email"`
		Message string `json:"message" validate:"required"`
	}
)

func (lr *LoginRequest) Validate() error      { return core.Validate.Struct(lr) }
func (scr *ScoreCardRequest) Validate() error { return core.Validate.Struct(scr) }
func (rr *ReminderRequest) Validate() error   { return core.Validate.Struct(rr) }
