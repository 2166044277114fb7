package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// callbackPage closes the consent popup whatever the outcome; the message is
// only seen if the browser refuses to close the window.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Google connection</title></head>
<body>
<script>window.close();</script>
<h1>{{.}}</h1>
</body>
</html>
`))

const (
	callbackSuccessMessage = "Successfully connected to Google! You can close this window."
	callbackFailureMessage = "Failed to connect to Google"
)

// GoogleCallbackHandler completes the Google consent flow: it verifies the
// state, exchanges the code, stores the tokens on the session's tenant and
// runs a first fetch.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")
		state := query.Get("state")

		if errorParam := query.Get("error"); errorParam != "" {
			renderCallback(w, http.StatusBadRequest, "Authorization failed: "+errorParam)
			return
		}
		if code == "" || state == "" {
			renderCallback(w, http.StatusBadRequest, "Missing authorization code or state")
			return
		}

		logger := hlog.FromRequest(r)
		ctx := r.Context()

		sessionToken, err := s.tokens.ParseState(state)
		if err != nil {
			logger.Err(err).Msg("google callback: invalid state")
			renderCallback(w, http.StatusInternalServerError, callbackFailureMessage)
			return
		}

		grant, err := s.tokens.Exchange(ctx, code)
		if err != nil {
			logger.Err(err).Msg("google callback: code exchange failed")
			renderCallback(w, http.StatusInternalServerError, callbackFailureMessage)
			return
		}

		if err := s.tokens.StoreGoogleTokens(ctx, sessionToken, *grant); err != nil {
			logger.Err(err).Msg("google callback: storing tokens failed")
			renderCallback(w, http.StatusInternalServerError, callbackFailureMessage)
			return
		}

		if err := s.fetcher.FetchGoogleData(ctx, sessionToken); err != nil {
			logger.Err(err).Msg("google callback: initial fetch failed")
			renderCallback(w, http.StatusInternalServerError, callbackFailureMessage)
			return
		}

		logger.Info().Str("account", grant.AccountEmail).Msg("google connected")
		renderCallback(w, http.StatusOK, callbackSuccessMessage)
	}
}

func renderCallback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, message)
}
