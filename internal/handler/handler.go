package handler

import (
	"github.com/go-telegram/bot"
	"github.com/roznoapp/rozno/internal/config"
	"github.com/roznoapp/rozno/internal/repository"
	"github.com/roznoapp/rozno/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot            *bot.Bot
	cfg            *config.Config
	conversations  *service.ConversationService
	profileService *service.ProfileService
	memoryService  *service.MemoryService
	billingService *service.BillingService
	moodLogs       *repository.MoodLogs
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot            *bot.Bot
	Cfg            *config.Config
	Conversations  *service.ConversationService
	ProfileService *service.ProfileService
	MemoryService  *service.MemoryService
	BillingService *service.BillingService
	MoodLogs       *repository.MoodLogs
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:            deps.Bot,
		cfg:            deps.Cfg,
		conversations:  deps.Conversations,
		profileService: deps.ProfileService,
		memoryService:  deps.MemoryService,
		billingService: deps.BillingService,
		moodLogs:       deps.MoodLogs,
	}
}
