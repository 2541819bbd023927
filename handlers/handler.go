package handlers

import (
	"map-action-api/services"
)

// Handler carries the wired services for all HTTP endpoints. Built once
// in main and passed to route registration; no package-level state.
type Handler struct {
	Analysis *services.AnalysisService
	Reports  *services.ReportStore
	ChatSvc  *services.ChatService
	Sessions *services.MongoChatStore
}

// NewHandler wires the HTTP handler set.
func NewHandler(analysis *services.AnalysisService, reports *services.ReportStore, chat *services.ChatService, sessions *services.MongoChatStore) *Handler {
	return &Handler{
		Analysis: analysis,
		Reports:  reports,
		ChatSvc:  chat,
		Sessions: sessions,
	}
}
