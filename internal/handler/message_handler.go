package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
)

const maxAttachmentSize = 10 << 20 // 10 MB

// sseHeartbeat keeps idle proxies from closing the stream.
var sseHeartbeat = 25 * time.Second

// MessageHandler はプロジェクトチャットの HTTP ハンドラ
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler は MessageHandler を生成する
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// List は GET /api/projects/{id}/messages を処理する（古い順）
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	msgs, err := h.svc.List(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Send は POST /api/projects/{id}/messages を処理する。
// JSON {"body"} または multipart (body, file) を受け付ける
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var in service.SendInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize+maxJSONBody)
		if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
			writeError(w, http.StatusBadRequest, "file_too_large", false)
			return
		}
		in.Body = r.FormValue("body")
		file, header, err := r.FormFile("file")
		switch {
		case err == http.ErrMissingFile:
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid_file", false)
			return
		default:
			defer file.Close()
			if header.Size > maxAttachmentSize {
				writeError(w, http.StatusBadRequest, "file_too_large", false)
				return
			}
			in.Attachment = &service.Attachment{ContentType: header.Header.Get("Content-Type"), Data: file}
		}
	} else {
		var req struct {
			Body string `json:"body"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		in.Body = req.Body
	}

	m, err := h.svc.Send(r.Context(), actor, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Stream は GET /api/projects/{id}/messages/stream を処理する (Server-Sent Events)。
// 直近の履歴を送った後、新着メッセージを配信し続ける
func (h *MessageHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Stream(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer st.Close()

	rc := http.NewResponseController(w)
	// The server's WriteTimeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for _, m := range st.Backlog {
		if err := writeEvent(w, m); err != nil {
			return
		}
	}
	if err := rc.Flush(); err != nil {
		slog.Warn("sse: flush failed", "error", err)
		return
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case m, open := <-st.Live():
			if !open {
				return
			}
			if err := writeEvent(w, m); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, m *model.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", m.ID, data)
	return err
}
