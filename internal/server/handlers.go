package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/buddy/internal/chat"
	"github.com/rcliao/buddy/internal/memory"
	"github.com/rcliao/buddy/internal/model"
)

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Messages array is required")
		return
	}

	resp, err := s.chat.Reply(c.Request.Context(), req)
	if err != nil {
		msg := "Internal server error"
		var cerr *chat.Error
		if errors.As(err, &cerr) {
			msg = cerr.Message
		}
		errorJSON(c, chat.StatusOf(err), msg)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// store returns the memory store for the :user path parameter. When it
// cannot be loaded it writes a 503 and returns false.
func (s *Server) store(c *gin.Context) (*memory.Store, bool) {
	st, err := s.registry.Get(c.Request.Context(), c.Param("user"))
	if err != nil {
		s.logger.Error("load memories", "user_id", c.Param("user"), "err", err)
		errorJSON(c, http.StatusServiceUnavailable, "memories unavailable")
		return nil, false
	}
	return st, true
}

func (s *Server) handleContext(c *gin.Context) {
	st, ok := s.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": st.RenderContext()})
}

func (s *Server) handleListMemories(c *gin.Context) {
	st, ok := s.store(c)
	if !ok {
		return
	}
	memories := st.Memories()
	if t := c.Query("type"); t != "" {
		typ, err := model.ParseType(t)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		memories = st.ByType(typ)
	}
	if memories == nil {
		memories = []model.Memory{}
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}

type addMemoryRequest struct {
	Type       string `json:"type" binding:"required"`
	Key        string `json:"key" binding:"required"`
	Value      string `json:"value"`
	Importance int    `json:"importance"`
}

func (s *Server) handleAddMemory(c *gin.Context) {
	var req addMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	typ, err := model.ParseType(req.Type)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := s.store(c)
	if !ok {
		return
	}
	before := st.FailedWrites()
	if err := st.Add(c.Request.Context(), memory.AddParams{Type: typ, Key: req.Key, Value: req.Value, Importance: req.Importance}); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	mem, ok := st.ByKey(req.Key)
	if !ok || mem.ID == "" || st.FailedWrites() > before {
		queued(c, st)
		return
	}
	c.JSON(http.StatusCreated, mem)
}

// queued reports a write that the persistence layer rejected and that waits
// for a retry.
func queued(c *gin.Context, st *memory.Store) {
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "failed_writes": st.FailedWrites()})
}

type updateMemoryRequest struct {
	Value      string `json:"value"`
	Importance int    `json:"importance"`
}

func (s *Server) handleUpdateMemory(c *gin.Context) {
	var req updateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := s.store(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := st.ByID(id); !ok {
		errorJSON(c, http.StatusNotFound, "memory not found")
		return
	}

	before := st.FailedWrites()
	if err := st.Update(c.Request.Context(), memory.UpdateParams{ID: id, Value: req.Value, Importance: req.Importance}); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if st.FailedWrites() > before {
		queued(c, st)
		return
	}
	mem, _ := st.ByID(id)
	c.JSON(http.StatusOK, mem)
}

func (s *Server) handleDeleteMemory(c *gin.Context) {
	st, ok := s.store(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := st.ByID(id); !ok {
		errorJSON(c, http.StatusNotFound, "memory not found")
		return
	}

	before := st.FailedWrites()
	if err := st.Delete(c.Request.Context(), id); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if st.FailedWrites() > before {
		queued(c, st)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetByKey(c *gin.Context) {
	st, ok := s.store(c)
	if !ok {
		return
	}
	mem, ok := st.ByKey(c.Param("key"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "memory not found")
		return
	}
	c.JSON(http.StatusOK, mem)
}

type summarizeRequest struct {
	Conversation string `json:"conversation"`
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := s.store(c)
	if !ok {
		return
	}
	before := st.FailedWrites()
	if err := st.SummarizeAndStore(c.Request.Context(), req.Conversation); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if st.FailedWrites() > before {
		queued(c, st)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"summary": memory.Summarize(req.Conversation)})
}

func (s *Server) handleRetry(c *gin.Context) {
	st, ok := s.store(c)
	if !ok {
		return
	}
	n, err := st.RetryFailedWrites(c.Request.Context())
	body := gin.H{"retried": n, "failed_writes": st.FailedWrites()}
	if err != nil {
		s.logger.Warn("retry failed writes", "user_id", st.UserID(), "err", err)
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
