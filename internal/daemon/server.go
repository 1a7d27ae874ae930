package daemon

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/protocol"
)

const maxMessageSize = 64 << 10 // 64KB

// Handler serves one message on behalf of a sender.
type Handler interface {
	Submit(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error)
}

// Server is the loopback HTTP transport for protocol messages
type Server struct {
	handler Handler
	router  *gin.Engine
}

// NewServer creates the message server
func NewServer(h Handler) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		handler: h,
		router:  router,
	}

	router.POST(constants.MessagePath, s.handleMessage)

	return s
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleMessage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageSize)

	sender := protocol.Sender{ID: c.GetHeader(constants.SenderHeader)}

	var msg protocol.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, protocol.Fail(protocol.ErrInvalidMessageType))
		return
	}

	resp, err := s.handler.Submit(c.Request.Context(), sender, msg)
	if err != nil {
		logger.Error("Message failed", "type", msg.Type, "error", err)
		c.JSON(http.StatusInternalServerError, protocol.Fail(protocol.ErrStorage))
		return
	}

	c.JSON(statusFor(resp), resp)
}

func statusFor(resp protocol.Response) int {
	switch resp.Error {
	case "":
		return http.StatusOK
	case protocol.ErrUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
