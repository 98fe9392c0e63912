package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pestilink/pestilink-backend/api/middleware"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"github.com/rs/zerolog"
)

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Level: zerolog.Disabled, Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withTestIdentity(t *testing.T, req *http.Request, userID uuid.UUID, username string, role enums.UserRole) *http.Request {
	t.Helper()
	return req.WithContext(middleware.WithIdentity(req.Context(), userID.String(), username, string(role)))
}
