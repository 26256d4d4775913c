package backend

import (
	"context"
	"net/http"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/model"
)

const (
	msgLoginFailed       = "login failed"
	msgCannotReachServer = "cannot reach server"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login calls POST /auth/login. A rejected login becomes an apperr.Auth
// carrying the server message; a request that got no response becomes
// apperr.Connectivity.
func (c *Client) Login(ctx context.Context, username, password string) (model.Session, error) {
	var sess model.Session
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Username: username, Password: password}, &sess)
	if err == nil {
		return sess, nil
	}
	if IsNoResponse(err) {
		return model.Session{}, apperr.ConnectivityErr(msgCannotReachServer, err)
	}
	if msg := serverMessage(err); msg != "" {
		return model.Session{}, apperr.AuthErr(msg, err)
	}
	return model.Session{}, apperr.AuthErr(msgLoginFailed, err)
}
