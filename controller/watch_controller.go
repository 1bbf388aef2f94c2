package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/service"
)

type WatchController struct {
	svc *service.WatchService
}

func NewWatchController(svc *service.WatchService) *WatchController {
	return &WatchController{svc: svc}
}

func (w *WatchController) Create(c *gin.Context) {
	var req entity.CreateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	watch, err := w.svc.Create(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, watch)
}

func (w *WatchController) List(c *gin.Context) {
	watches, err := w.svc.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": watches})
}

func (w *WatchController) Remove(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := w.svc.Remove(uint(id64)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
