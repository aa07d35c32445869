package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"grant-assistant-be/internal/constant"
	"grant-assistant-be/internal/dto"
	"grant-assistant-be/pkg/proposal"

	"github.com/fatih/color"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type client struct {
	baseURL string
	http    *http.Client
}

// Walks the demo script against a running server and prints the transcript
// and checklist as they change.
func main() {
	host := flag.String("host", "http://localhost:3000", "server address")
	wait := flag.Duration("wait", 6*time.Second, "pause after each turn for scripted effects to land")
	upload := flag.Int("upload-at", 2, "script step answered with a document upload instead of a message (-1 to disable)")
	flag.Parse()

	c := &client{baseURL: *host + constant.APIBasePath, http: &http.Client{Timeout: 30 * time.Second}}

	color.Cyan("🚀 Grant proposal demo walkthrough\n")

	session, err := c.createSession()
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}
	color.Green("Session: %s (%d sections, %d scripted steps)", session.Id, len(session.Sections), session.ScriptLength)
	printTranscript(session.Transcript, 0)
	seen := len(session.Transcript)

	for i, step := range proposal.DemoScript() {
		if i == *upload {
			color.Yellow("\n[USER] uploads plan.pdf")
			if err := c.upload(session.Id, "plan.pdf"); err != nil {
				color.Red("Failed: %v", err)
				continue
			}
		} else {
			text := step.ExpectedUserUtterance
			if text == "" {
				text = "Continue"
			}
			color.Yellow("\n[USER] %s", text)
			if err := c.send(session.Id, text); err != nil {
				color.Red("Failed: %v", err)
				continue
			}
		}

		time.Sleep(*wait)

		session, err = c.getSession(session.Id)
		if err != nil {
			color.Red("Failed to refresh session: %v", err)
			os.Exit(1)
		}
		printTranscript(session.Transcript, seen)
		seen = len(session.Transcript)
		printProgress(session)
	}

	color.Cyan("\n✅ Walkthrough finished at step %d/%d", session.StepIndex, session.ScriptLength)
	printSections(session.Sections)
}

func (c *client) createSession() (*dto.SessionResponse, error) {
	var res envelope[dto.SessionResponse]
	if err := c.do(http.MethodPost, "/sessions", "", nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *client) getSession(id string) (*dto.SessionResponse, error) {
	var res envelope[dto.SessionResponse]
	if err := c.do(http.MethodGet, "/sessions/"+id, "", nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *client) send(id, text string) error {
	body, _ := json.Marshal(dto.SendMessageRequest{Content: text})
	return c.do(http.MethodPost, "/sessions/"+id+"/messages", "application/json", bytes.NewReader(body), nil)
}

func (c *client) upload(id, name string) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte("%PDF-1.4 simulated")); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}
	return c.do(http.MethodPost, "/sessions/"+id+"/documents", form.FormDataContentType(), &body, nil)
}

func (c *client) do(method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, raw)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printTranscript(entries []dto.ChatEntryResponse, from int) {
	for _, e := range entries[from:] {
		switch proposal.Role(e.Role) {
		case proposal.RoleUser:
			continue
		case proposal.RoleAssistant:
			color.Blue("[ASSISTANT] %s", e.Content)
		case proposal.RoleSystem:
			color.Magenta("[SYSTEM] %s", e.Content)
		}
	}
}

func printProgress(s *dto.SessionResponse) {
	color.Green("Progress: %d/%d complete (%.0f%%), step %d/%d",
		s.Progress.Completed, s.Progress.Total, s.Progress.Percent, s.StepIndex, s.ScriptLength)
}

func printSections(sections []dto.SectionResponse) {
	for _, s := range sections {
		line := fmt.Sprintf("  %-3s %-40s %s", s.Id, s.Title, s.Status)
		switch proposal.SectionStatus(s.Status) {
		case proposal.StatusComplete:
			color.Green("%s", line)
		case proposal.StatusInProgress:
			color.Yellow("%s", line)
		default:
			fmt.Println(line)
		}
	}
}
