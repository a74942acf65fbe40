package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stemcert/backend/core/staff"
)

func registerStaffAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *staff.Service) {
	api := staffAPI{svc: svc}

	sg := g.Group("/staff")
	sg.POST("/login", api.login)
	sg.POST("/token-refresh", api.refreshToken, jwt)

	admin := adminMiddleware()
	sg.GET("", api.queryAll, jwt, admin)
	sg.POST("", api.create, jwt, admin)
	sg.GET("/:username", api.retrieve, jwt, admin)
	sg.PUT("/:username", api.update, jwt, admin)
	sg.DELETE("/:username", api.delete, jwt, admin)
}

type staffAPI struct {
	svc *staff.Service
}

func (api *staffAPI) login(ctx echo.Context) error {
	data := new(LoginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *staffAPI) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *staffAPI) queryAll(ctx echo.Context) error {
	users, err := api.svc.QueryAll()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *staffAPI) create(ctx echo.Context) error {
	data := new(staff.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(*data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *staffAPI) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByUsername(ctx.Param("username"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *staffAPI) update(ctx echo.Context) error {
	data := new(staff.UpdateUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Param("username"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *staffAPI) delete(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("username")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
