package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tournament-registration/models"
	"tournament-registration/repository"
	"tournament-registration/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TournamentHandler struct {
	tournaments  *services.TournamentService
	registration *services.RegistrationService
	logger       *zap.Logger
}

func NewTournamentHandler(tournaments *services.TournamentService, registration *services.RegistrationService, logger *zap.Logger) *TournamentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentHandler{tournaments: tournaments, registration: registration, logger: logger}
}

func SetupTournamentRoutes(app *fiber.App, h *TournamentHandler) {
	// 🔓 Listing
	app.Get("/", h.List)
	app.Get("/Tournament", h.List)

	t := app.Group("/Tournament")
	t.Get("/MyTournaments", h.List)
	t.Get("/Details/:id", h.Details)
	t.Get("/Search", h.Search)
	t.Get("/Stats/:id", h.Stats)
	t.Get("/ByGame/:game", h.ByGame)

	// Organizer actions
	t.Get("/Create", h.CreateForm)
	t.Post("/Create", h.Create)
	t.Post("/Delete/:id", h.Delete)

	// Registration
	t.Get("/Join/:id", h.JoinForm)
	t.Post("/Join", h.Join)
	t.Post("/LeaveTournament", h.Leave)

	// AJAX endpoints used by the registration page
	t.Post("/CheckPlayer", h.CheckPlayer)
	t.Post("/GetDetailedPlayerInfo", h.DetailedPlayerInfo)
	t.Get("/GetTournamentData/:id", h.TournamentData)
}

func tournamentID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
}

func detailsURL(id uint) string {
	return fmt.Sprintf("/Tournament/Details/%d", id)
}

// List returns the active tournaments. A storage error degrades to an empty list.
func (h *TournamentHandler) List(c *fiber.Ctx) error {
	list, err := h.tournaments.ListActive(c.UserContext())
	if err != nil {
		h.logger.Error("❌ failed to list tournaments", zap.String("request_id", requestID(c)), zap.Error(err))
		list = []models.Tournament{}
	}
	return c.JSON(withFlash(c, fiber.Map{"tournaments": list}))
}

func (h *TournamentHandler) Details(c *fiber.Ctx) error {
	id, ok := tournamentID(c)
	if !ok {
		return notFound(c)
	}
	t, err := h.tournaments.Get(c.UserContext(), id)
	if err != nil {
		if !models.IsNotFound(err) {
			h.logger.Error("❌ failed to load tournament", zap.Uint("tournament_id", id), zap.Error(err))
		}
		return notFound(c)
	}
	return c.JSON(withFlash(c, fiber.Map{"tournament": t}))
}

type gameOption struct {
	Value models.GameType `json:"value"`
	ID    int             `json:"id"`
	Name  string          `json:"name"`
}

func (h *TournamentHandler) CreateForm(c *fiber.Ctx) error {
	games := make([]gameOption, 0, len(models.Games))
	for _, g := range models.Games {
		games = append(games, gameOption{Value: g, ID: int(g), Name: g.DisplayName()})
	}
	return c.JSON(fiber.Map{
		"games": games,
		"limits": fiber.Map{
			"name_max_length":        200,
			"description_max_length": 1000,
			"min_participants":       2,
			"max_participants":       100,
			"min_prize":              0,
		},
	})
}

func (h *TournamentHandler) Create(c *fiber.Ctx) error {
	var req createTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"error": "Invalid request payload"},
		})
	}

	fieldErrs := map[string]string{}
	if err := validate.Struct(req); err != nil {
		fieldErrs = formatValidationErrors(err)
	}

	in := services.CreateTournamentInput{
		Name:            req.Name,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		Prize:           req.Prize,
	}
	if _, bad := fieldErrs["game_type"]; !bad {
		game, err := models.ParseGameType(req.GameType)
		if err != nil {
			fieldErrs["game_type"] = "Unknown game."
		}
		in.Game = game
	}
	if _, bad := fieldErrs["start_date"]; !bad {
		start, err := parseDate(req.StartDate)
		if err != nil {
			fieldErrs["start_date"] = "The start_date field must be a valid date."
		}
		in.StartDate = start
	}
	if _, bad := fieldErrs["end_date"]; !bad {
		end, err := parseDate(req.EndDate)
		if err != nil {
			fieldErrs["end_date"] = "The end_date field must be a valid date."
		}
		in.EndDate = end
	}
	_, badStart := fieldErrs["start_date"]
	_, badEnd := fieldErrs["end_date"]
	if !badStart && !badEnd && !in.EndDate.After(in.StartDate) {
		fieldErrs["end_date"] = "End date must be after the start date."
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	if _, err := h.tournaments.Create(c.UserContext(), in); err != nil {
		if errors.Is(err, models.ErrInvalidSchedule) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": fiber.Map{"end_date": "End date must be after the start date."},
			})
		}
		return h.internalError(c, "failed to create tournament", err)
	}

	setFlash(c, flashSuccess, "Tournament created successfully!")
	return c.Redirect("/Tournament", fiber.StatusSeeOther)
}

func (h *TournamentHandler) JoinForm(c *fiber.Ctx) error {
	id, ok := tournamentID(c)
	if !ok {
		return notFound(c)
	}
	t, err := h.tournaments.Get(c.UserContext(), id)
	if err != nil {
		if !models.IsNotFound(err) {
			h.logger.Error("❌ failed to load tournament", zap.Uint("tournament_id", id), zap.Error(err))
		}
		return notFound(c)
	}
	return c.JSON(fiber.Map{
		"tournament_id":   t.ID,
		"tournament_name": t.Name,
		"game_type":       t.Game,
		"game_display":    t.Game.DisplayName(),
	})
}

func (h *TournamentHandler) Join(c *fiber.Ctx) error {
	var req joinTournamentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fiber.Map{"error": "Invalid request payload"},
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": formatValidationErrors(err)})
	}

	_, err := h.registration.Join(c.UserContext(), services.JoinRequest{
		TournamentID: req.TournamentID,
		PlayerName:   req.PlayerName,
		GameUsername: req.GameUsername,
	})
	if err == nil {
		setFlash(c, flashSuccess, "Registration completed successfully!")
		return c.Redirect(detailsURL(req.TournamentID), fiber.StatusSeeOther)
	}

	var (
		verr *services.VerificationFailedError
		dup  *models.DuplicateParticipantError
	)
	switch {
	case errors.Is(err, models.ErrTournamentNotFound):
		return notFound(c)
	case errors.Is(err, models.ErrTournamentFull):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"errors": fiber.Map{"tournament_id": "This tournament is already full."},
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": fiber.Map{"game_username": verr.Error()},
		})
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"errors": duplicateFieldError(dup)})
	}
	return h.internalError(c, "failed to register participant", err)
}

func duplicateFieldError(dup *models.DuplicateParticipantError) fiber.Map {
	if dup.Field == models.DuplicateOnName {
		return fiber.Map{"player_name": "This player name is already registered in the tournament."}
	}
	msg := "This Riot ID is already registered in the tournament."
	if dup.ExistingPlayer != "" {
		msg = fmt.Sprintf("This Riot ID is already registered by %s.", dup.ExistingPlayer)
	}
	return fiber.Map{"game_username": msg}
}

// lookupRequest parses the username and game of the player preview endpoints.
// It returns a non-empty message when the request cannot be served.
func lookupRequest(c *fiber.Ctx) (string, models.GameType, string) {
	var req playerLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return "", 0, "Invalid request payload"
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return "", 0, "Username is required"
	}
	game, err := models.ParseGameType(req.GameType)
	if err != nil {
		return "", 0, "Unknown game type"
	}
	return username, game, ""
}

func (h *TournamentHandler) verificationMessage(c *fiber.Ctx, username string, err error) string {
	var verr *services.VerificationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	h.logger.Error("❌ player lookup failed",
		zap.String("request_id", requestID(c)), zap.String("username", username), zap.Error(err))
	return "Could not verify the player. Please try again."
}

func (h *TournamentHandler) CheckPlayer(c *fiber.Ctx) error {
	username, game, msg := lookupRequest(c)
	if msg != "" {
		return c.JSON(fiber.Map{"success": false, "message": msg})
	}
	summary, err := h.registration.CheckPlayer(c.UserContext(), username, game)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": h.verificationMessage(c, username, err)})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Player found!", "data": summary})
}

func (h *TournamentHandler) DetailedPlayerInfo(c *fiber.Ctx) error {
	username, game, msg := lookupRequest(c)
	if msg != "" {
		return c.JSON(fiber.Map{"success": false, "message": msg})
	}
	details, err := h.registration.DetailedPlayerInfo(c.UserContext(), username, game)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": h.verificationMessage(c, username, err)})
	}
	msg = "Player found!"
	if game == models.GameValorant {
		msg = "Valorant player found!"
	}
	return c.JSON(fiber.Map{"success": true, "message": msg, "data": details})
}

type participantData struct {
	ID           uint      `json:"id"`
	PlayerName   string    `json:"playerName"`
	GameUsername string    `json:"gameUsername"`
	Rank         string    `json:"rank"`
	RegisteredAt time.Time `json:"registeredAt"`
	APIData      string    `json:"apiData"`
}

type tournamentData struct {
	ID               uint              `json:"id"`
	Name             string            `json:"name"`
	ParticipantCount int               `json:"participantCount"`
	MaxParticipants  int               `json:"maxParticipants"`
	Status           string            `json:"status"`
	Participants     []participantData `json:"participants"`
}

// TournamentData is the polling snapshot of the details page.
func (h *TournamentHandler) TournamentData(c *fiber.Ctx) error {
	id, ok := tournamentID(c)
	if !ok {
		return c.JSON(fiber.Map{"success": false, "message": "Tournament not found"})
	}
	t, err := h.tournaments.Get(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(fiber.Map{"success": false, "message": "Tournament not found"})
		}
		h.logger.Error("❌ failed to load tournament data", zap.Uint("tournament_id", id), zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "message": "Internal error"})
	}

	data := tournamentData{
		ID:               t.ID,
		Name:             t.Name,
		ParticipantCount: len(t.Participants),
		MaxParticipants:  t.MaxParticipants,
		Status:           t.Status.String(),
		Participants:     make([]participantData, 0, len(t.Participants)),
	}
	for _, p := range t.Participants {
		data.Participants = append(data.Participants, participantData{
			ID:           p.ID,
			PlayerName:   p.PlayerName,
			GameUsername: p.GameUsername,
			Rank:         p.Rank,
			RegisteredAt: p.RegisteredAt,
			APIData:      p.APIData,
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func (h *TournamentHandler) Leave(c *fiber.Ctx) error {
	var req leaveTournamentRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		setFlash(c, flashError, "Player name and tournament are required.")
		if req.TournamentID == 0 {
			return c.Redirect("/Tournament", fiber.StatusSeeOther)
		}
		return c.Redirect(detailsURL(req.TournamentID), fiber.StatusSeeOther)
	}

	err := h.registration.Leave(c.UserContext(), req.TournamentID, strings.TrimSpace(req.PlayerName))
	switch {
	case err == nil:
		setFlash(c, flashSuccess, "You left the tournament successfully!")
	case errors.Is(err, models.ErrParticipantNotFound):
		setFlash(c, flashError, "Player is not registered in this tournament.")
	default:
		h.logger.Error("❌ failed to leave tournament",
			zap.String("request_id", requestID(c)), zap.Uint("tournament_id", req.TournamentID), zap.Error(err))
		setFlash(c, flashError, "Error leaving the tournament. Please try again.")
	}
	return c.Redirect(detailsURL(req.TournamentID), fiber.StatusSeeOther)
}

func (h *TournamentHandler) Delete(c *fiber.Ctx) error {
	id, ok := tournamentID(c)
	if !ok {
		return c.JSON(fiber.Map{"success": false, "message": "Tournament not found"})
	}
	if err := h.tournaments.Delete(c.UserContext(), id); err != nil {
		if models.IsNotFound(err) {
			return c.JSON(fiber.Map{"success": false, "message": "Tournament not found"})
		}
		h.logger.Error("❌ failed to delete tournament", zap.Uint("tournament_id", id), zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "message": internalErrorMessage})
	}
	setFlash(c, flashSuccess, "Tournament deleted successfully!")
	return c.JSON(fiber.Map{"success": true})
}

func (h *TournamentHandler) Search(c *fiber.Ctx) error {
	f := repository.SearchFilter{Term: strings.TrimSpace(c.Query("searchTerm"))}
	if v := c.Query("gameFilter"); v != "" {
		game, err := models.ParseGameType(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown game filter"})
		}
		f.Game = &game
	}
	if v := c.Query("statusFilter"); v != "" {
		status, err := models.ParseTournamentStatus(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown status filter"})
		}
		f.Status = &status
	}

	list, err := h.tournaments.Search(c.UserContext(), f)
	if err != nil {
		h.logger.Error("❌ tournament search failed", zap.String("request_id", requestID(c)), zap.Error(err))
		list = []models.Tournament{}
	}
	return c.JSON(fiber.Map{
		"tournaments":  list,
		"searchTerm":   f.Term,
		"gameFilter":   c.Query("gameFilter"),
		"statusFilter": c.Query("statusFilter"),
	})
}

func (h *TournamentHandler) Stats(c *fiber.Ctx) error {
	id, ok := tournamentID(c)
	if !ok {
		return notFound(c)
	}
	stats, err := h.tournaments.Stats(c.UserContext(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return notFound(c)
		}
		return h.internalError(c, "failed to compute tournament stats", err)
	}
	return c.JSON(stats)
}

func (h *TournamentHandler) ByGame(c *fiber.Ctx) error {
	game, err := models.ParseGameType(c.Params("game"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown game"})
	}
	list, err := h.tournaments.ListByGame(c.UserContext(), game)
	if err != nil {
		return h.internalError(c, "failed to list tournaments by game", err)
	}
	return c.JSON(fiber.Map{"game": game, "tournaments": list})
}
