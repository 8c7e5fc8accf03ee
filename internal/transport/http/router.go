// Package http is the gin transport. Instructors authenticate with
// Bearer tokens; participants authenticate by knowing their participant
// ID, which only the join response hands out.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"metislap/internal/app"
	"metislap/internal/auth"
)

type Handler struct {
	rooms   *app.RoomService
	quiz    *app.QuizService
	drawing *app.DrawingService
	ladder  *app.LadderService
	cache   app.StateCache
	tokens  *auth.TokenManager
	log     zerolog.Logger
}

func NewHandler(
	rooms *app.RoomService,
	quiz *app.QuizService,
	drawing *app.DrawingService,
	ladder *app.LadderService,
	cache app.StateCache,
	tokens *auth.TokenManager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		rooms:   rooms,
		quiz:    quiz,
		drawing: drawing,
		ladder:  ladder,
		cache:   cache,
		tokens:  tokens,
		log:     log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Participant surface: no instructor token required.
	public := r.Group("/api")
	{
		public.GET("/join", h.lookupRoom)
		public.POST("/join", h.join)
		public.POST("/participants/:id/leave", h.leave)
		public.GET("/participants/:id/progress", h.participantProgress)

		public.POST("/answers", h.submitAnswer)

		public.GET("/rounds/:id/drawing", h.snapshot)
		public.POST("/rounds/:id/drawing", h.submitSnapshot)
		public.GET("/rounds/:id/guesses", h.guesses)
		public.POST("/rounds/:id/guesses", h.submitGuess)

		public.POST("/ladder/selections", h.selectPosition)

		public.GET("/rooms/:id/quiz/state", h.quizState)
		public.GET("/rooms/:id/drawing/state", h.drawingState)
		public.GET("/rooms/:id/ladder/state", h.ladderState)
	}

	instructor := r.Group("/api", InstructorAuth(h.tokens))
	{
		instructor.POST("/rooms", h.createRoom)
		instructor.GET("/rooms", h.listRooms)
		instructor.GET("/rooms/:id", h.getRoom)
		instructor.PATCH("/rooms/:id", h.updateRoom)
		instructor.DELETE("/rooms/:id", h.deleteRoom)
		instructor.POST("/rooms/:id/start", h.startGame)
		instructor.POST("/rooms/:id/end", h.endGame)
		instructor.POST("/rooms/:id/reset", h.resetGame)
		instructor.GET("/rooms/:id/participants", h.participants)
		instructor.GET("/rooms/:id/progress", h.roomProgress)

		instructor.GET("/rooms/:id/questions", h.listQuestions)
		instructor.POST("/rooms/:id/questions", h.addQuestion)
		instructor.PATCH("/questions/:id", h.updateQuestion)
		instructor.DELETE("/questions/:id", h.deleteQuestion)
		instructor.GET("/questions/:id/answers", h.answersReport)
		instructor.POST("/rooms/:id/quiz/advance", h.advanceGame)

		instructor.GET("/rooms/:id/words", h.listWords)
		instructor.POST("/rooms/:id/words", h.addWord)
		instructor.PATCH("/words/:id", h.updateWord)
		instructor.DELETE("/words/:id", h.deleteWord)
		instructor.POST("/rooms/:id/rounds/advance", h.advanceGame)

		instructor.GET("/rooms/:id/items", h.listItems)
		instructor.POST("/rooms/:id/items", h.addItem)
		instructor.PATCH("/items/:id", h.updateItem)
		instructor.DELETE("/items/:id", h.deleteItem)
		instructor.POST("/rooms/:id/ladder/reveal", h.reveal)
	}

	return r
}
