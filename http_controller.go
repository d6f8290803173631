package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController exposes the token lifecycle as JSON endpoints.
type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       *Auther
	Routes       *AuthControllerRoutes
	ErrorHandler func(ctx router.Context, err error) error
}

type AuthControllerRoutes struct {
	Register string
	Login    string
	Refresh  string
	Logout   string
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register: "/register",
			Login:    "/login",
			Refresh:  "/refresh",
			Logout:   "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.defaultErrHandler
	}

	return c
}

// RegisterAuthRoutes mounts the lifecycle endpoints on the given group.
func RegisterAuthRoutes(group RouteRegistrar, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	group.Post(controller.Routes.Register, controller.RegisterPost)
	group.Post(controller.Routes.Login, controller.LoginPost)
	group.Post(controller.Routes.Refresh, controller.RefreshPost)
	group.Post(controller.Routes.Logout, controller.LogoutPost)

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// LogoutRequest payload
type LogoutRequest struct {
	Token string `form:"token" json:"token"`
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterAccountMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse registration payload").
			WithCode(errors.CodeBadRequest))
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	pair, err := a.Auther.Register(ctx.Context(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, pair)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse login payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest))
	}

	pair, err := a.Auther.Authenticate(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse refresh payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid refresh payload").
			WithCode(errors.CodeBadRequest))
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	payload := new(LogoutRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse logout payload").
			WithCode(errors.CodeBadRequest))
	}

	token := payload.Token
	if token == "" {
		// fall back to the bearer header so clients can log out with the
		// same credentials they authenticate with
		token = bearerFromHeader(ctx)
	}

	if err := a.Auther.Logout(ctx.Context(), token); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{"status": "ok"})
}

func (a *AuthController) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred")
	}

	a.Logger.Info(
		"auth controller error: %s (%s)",
		richErr.Message,
		richErr.TextCode,
	)

	code := richErr.Code
	if code == 0 {
		switch richErr.Category {
		case errors.CategoryAuth, errors.CategoryAuthz:
			code = router.StatusUnauthorized
		case errors.CategoryRateLimit:
			code = router.StatusTooManyRequests
		default:
			code = router.StatusInternalServerError
		}
	}

	return c.JSON(code, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func bearerFromHeader(ctx router.Context) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	const scheme = "Bearer "
	if len(header) > len(scheme) && header[:len(scheme)] == scheme {
		return header[len(scheme):]
	}
	return ""
}
