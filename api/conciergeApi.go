package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/festivo-org/concierge/models"
	"github.com/festivo-org/concierge/team"
)

type (
	Api struct {
		svc        *team.Service
		auth       AuthClient
		baseLogger *zap.SugaredLogger
		Config     Config
	}

	Config struct {
		Protocol string `default:"http"`
	}

	// AuthClient resolves the bearer credential on a request, or nil when
	// there is none worth trusting.
	AuthClient interface {
		Authenticate(req *http.Request) *models.TokenData
	}

	// this just makes it easier to bind a handler for the Handle function
	varsHandler func(http.ResponseWriter, *http.Request, map[string]string)
)

const (
	STATUS_OK            = "OK"
	STATUS_NO_TOKEN      = "No authorization token was found"
	STATUS_ERR_DECODING  = "Error decoding the request body"
	STATUS_ERR_SERVICE   = "Error servicing the request"
	STATUS_ERR_NOT_READY = "Store connectivity failure"

	statusInvalidEmailMessage   = "The invitee email address is invalid"
	statusInvalidRoleMessage    = "The requested role is not assignable"
	statusForbiddenMessage      = "Forbidden to perform requested operation"
	statusPlanRequiredMessage   = "Team management requires the exclusive plan"
	statusInviteNotFoundMessage = "No matching invite was found"
	statusInviteExpiredMessage  = "The invite has expired"
	statusInviteResolvedMessage = "The invite has already been resolved"
	statusExistingInviteMessage = "There is already an existing invite"
	statusExistingMemberMessage = "The user is already an existing member"
)

func NewApi(
	cfg Config,
	svc *team.Service,
	auth AuthClient,
	logger *zap.SugaredLogger,
) *Api {
	return &Api{
		svc:        svc,
		auth:       auth,
		baseLogger: logger,
		Config:     cfg,
	}
}

func apiConfigProvider() (Config, error) {
	var config Config
	err := envconfig.Process("concierge", &config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

func routerProvider(api *Api) *mux.Router {
	rtr := mux.NewRouter()
	api.SetHandlers("", rtr)
	return rtr
}

// RouterModule build a router
var RouterModule = fx.Options(fx.Provide(routerProvider, apiConfigProvider))

// addPathVarToLogger adds a request's path variable to the logging context.
//
// It uses the first case-insensitive match of name it finds, additional occurrences of name are
// ignored.
func (a *Api) addPathVarToLogger(name string) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, orig *http.Request) {
			vars := mux.Vars(orig)
			next := orig
			for key := range vars {
				if !strings.EqualFold(key, name) {
					continue
				}
				ctxLog := a.logger(orig.Context()).With(zap.String(key, vars[key]))
				ctxWithLog := context.WithValue(orig.Context(), ctxLoggerKey{}, ctxLog)
				next = orig.WithContext(ctxWithLog)
				break
			}
			h.ServeHTTP(w, next)
		})
	}
}

type ctxLoggerKey struct{}

func (a *Api) logger(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return a.cloneLogger()
}

func (a *Api) cloneLogger() *zap.SugaredLogger {
	return a.baseLogger.WithOptions()
}

func (a *Api) ctxLoggerHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origCtx := r.Context()
		ctxLog := a.cloneLogger()
		ctxWithLog := context.WithValue(origCtx, ctxLoggerKey{}, ctxLog)
		rWithLog := r.WithContext(ctxWithLog)
		h.ServeHTTP(w, rWithLog)
	})
}

func (a *Api) SetHandlers(prefix string, rtr *mux.Router) {
	rtr.Use(mux.MiddlewareFunc(a.ctxLoggerHandler))
	rtr.Use(a.addPathVarToLogger("inviteid"))

	rtr.HandleFunc("/status", a.IsReady).Methods("GET")
	rtr.HandleFunc("/ready", a.IsReady).Methods("GET")
	rtr.HandleFunc("/live", a.IsAlive).Methods("GET")

	// vars is a shorthand for applying the varsHandler to an handler.
	type vars = varsHandler

	// POST   /team/invite
	// GET    /team/invite/:token
	// POST   /team/invite/:token/accept
	// POST   /team/invite/:token/decline
	// DELETE /team/invite/:inviteId
	t := rtr.PathPrefix("/team").Subrouter()
	t.Handle("/invite", vars(a.SendInvite)).Methods("POST")
	t.Handle("/invite/{token}", vars(a.GetInvite)).Methods("GET")
	t.Handle("/invite/{token}/accept", vars(a.AcceptInvite)).Methods("POST")
	t.Handle("/invite/{token}/decline", vars(a.DeclineInvite)).Methods("POST")
	t.Handle("/invite/{inviteid}", vars(a.CancelInvite)).Methods("DELETE")

	// GET /team/invites
	// GET /team/invitations
	// GET /team/members
	t.Handle("/invites", vars(a.GetSentInvitations)).Methods("GET")
	t.Handle("/invitations", vars(a.GetReceivedInvitations)).Methods("GET")
	t.Handle("/members", vars(a.GetTeamMembers)).Methods("GET")
}

func (h varsHandler) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	h(res, req, vars)
}

func (a *Api) IsReady(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	if err := a.svc.Ping(ctx); err != nil {
		a.sendError(ctx, res, http.StatusInternalServerError, STATUS_ERR_NOT_READY, err)
		return
	}
	a.sendOK(ctx, res, STATUS_OK)
}

func (a *Api) IsAlive(res http.ResponseWriter, req *http.Request) {
	a.sendOK(req.Context(), res, STATUS_OK)
}

// find and validate the bearer credential
//
// The token's userID field is added to the context's logger.
func (a *Api) token(res http.ResponseWriter, req *http.Request) *models.TokenData {
	ctx := req.Context()
	td := a.auth.Authenticate(req)
	if td == nil {
		a.sendError(ctx, res, http.StatusUnauthorized, STATUS_NO_TOKEN)
		return nil
	}

	ctxLog := a.logger(ctx).With(zap.String("token's userID", td.UserID))
	*req = *req.WithContext(context.WithValue(ctx, ctxLoggerKey{}, ctxLog))

	return td
}

func (a *Api) sendModelAsResWithStatus(ctx context.Context, res http.ResponseWriter, model interface{}, statusCode int) {
	if jsonDetails, err := json.Marshal(model); err != nil {
		a.logger(ctx).With("model", model, zap.Error(err)).Errorf("trying to send model")
		http.Error(res, "Error marshaling data for response", http.StatusInternalServerError)
	} else {
		res.Header().Set("content-type", "application/json")
		res.WriteHeader(statusCode)
		res.Write(jsonDetails)
	}
}

func (a *Api) sendError(ctx context.Context, res http.ResponseWriter, statusCode int, reason string, extras ...interface{}) {
	a.sendErrorLog(ctx, statusCode, reason, extras...)
	a.sendModelAsResWithStatus(ctx, res, newStatus(statusCode, reason), statusCode)
}

func (a *Api) sendErrorLog(ctx context.Context, code int, reason string, extras ...interface{}) {
	details := splitExtrasAndErrorsAndFields(extras)
	log := a.logger(ctx).WithOptions(zap.AddCallerSkip(2)).
		Desugar().With(details.Fields...).Sugar().
		With(zap.Int("code", code))
	if len(details.NonErrors) > 0 {
		log = log.With(zap.Array("extras", zapArrayAny(details.NonErrors)))
	}
	if len(details.Errors) == 1 {
		log = log.With(zap.Error(details.Errors[0]))
	} else if len(details.Errors) > 1 {
		log = log.With(zap.Errors("errors", details.Errors))
	}
	if code < http.StatusInternalServerError || len(details.Errors) == 0 {
		// if there are no errors, use info to skip the stack trace, as it's
		// probably not useful
		log.Info(reason)
	} else {
		log.Error(reason)
	}
}

// sendOK helps send a 200 response with a standard form and optional message.
func (a *Api) sendOK(ctx context.Context, res http.ResponseWriter, reason string) {
	a.sendModelAsResWithStatus(ctx, res, newStatus(http.StatusOK, reason), http.StatusOK)
}

type extrasDetails struct {
	Errors    []error
	NonErrors []interface{}
	Fields    []zap.Field
}

func splitExtrasAndErrorsAndFields(extras []interface{}) extrasDetails {
	details := extrasDetails{
		Errors:    []error{},
		NonErrors: []interface{}{},
		Fields:    []zap.Field{},
	}
	for _, extra := range extras {
		if err, ok := extra.(error); ok {
			if err != nil {
				details.Errors = append(details.Errors, err)
			}
		} else if field, ok := extra.(zap.Field); ok {
			details.Fields = append(details.Fields, field)
		} else if extraErrs, ok := extra.([]error); ok {
			if len(extraErrs) > 0 {
				details.Errors = append(details.Errors, extraErrs...)
			}
		} else {
			details.NonErrors = append(details.NonErrors, extra)
		}
	}
	return details
}

// zapArrayAny helps convert extras to strings for inclusion in a structured
// log message.
func zapArrayAny(extras []interface{}) zapcore.ArrayMarshalerFunc {
	return zapcore.ArrayMarshalerFunc(func(enc zapcore.ArrayEncoder) error {
		for _, extra := range extras {
			enc.AppendString(fmt.Sprintf("%v", extra))
		}
		return nil
	})
}
