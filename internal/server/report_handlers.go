package server

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nexa-tasks/nexa/internal/models"
)

const csvContentType = "text/csv; charset=utf-8"

// writeCSV sends rows as a CSV attachment
func (s *Server) writeCSV(c *gin.Context, filename string, rows [][]string) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		s.internalError(c, err, "Error exporting report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

func (s *Server) exportTasksReport(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	tasks, err := s.scopedTasks(sessionData)
	if err != nil {
		s.internalError(c, err, "Error exporting tasks")
		return
	}

	rows := [][]string{{"Task ID", "Title", "Description", "Priority", "Status", "Due Date", "Assigned To"}}
	for i := range tasks {
		t := &tasks[i]
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		assigned := make([]string, 0, len(t.Assignees))
		for _, a := range t.Assignees {
			assigned = append(assigned, fmt.Sprintf("%s (%s)", a.Name, a.Email))
		}
		rows = append(rows, []string{t.ID, t.Title, t.Description, t.Priority, t.Status, due, strings.Join(assigned, ", ")})
	}

	s.writeCSV(c, "tasks_report.csv", rows)
}

func (s *Server) exportUsersReport(c *gin.Context) {
	var users []UserRecord
	if err := s.db.Order("name").Find(&users).Error; err != nil {
		s.internalError(c, err, "Error exporting users")
		return
	}

	var tasks []TaskRecord
	if err := s.db.Preload("Assignees").Find(&tasks).Error; err != nil {
		s.internalError(c, err, "Error exporting users")
		return
	}

	type counters struct{ total, pending, inProgress, completed int }
	byUser := make(map[string]*counters, len(users))
	for _, u := range users {
		byUser[u.ID] = &counters{}
	}
	for _, t := range tasks {
		for _, a := range t.Assignees {
			n, ok := byUser[a.ID]
			if !ok {
				continue
			}
			n.total++
			switch models.Status(t.Status) {
			case models.StatusPending:
				n.pending++
			case models.StatusInProgress:
				n.inProgress++
			case models.StatusCompleted:
				n.completed++
			}
		}
	}

	rows := [][]string{{"User Name", "Email", "Total Assigned Tasks", "Pending Tasks", "In Progress Tasks", "Completed Tasks"}}
	for _, u := range users {
		n := byUser[u.ID]
		rows = append(rows, []string{
			u.Name,
			u.Email,
			strconv.Itoa(n.total),
			strconv.Itoa(n.pending),
			strconv.Itoa(n.inProgress),
			strconv.Itoa(n.completed),
		})
	}

	s.writeCSV(c, "users_report.csv", rows)
}
