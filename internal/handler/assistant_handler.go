package handler

import (
	"net/http"

	"educonnect/internal/app/assistant"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/req"
	"educonnect/internal/pkg/resp"
)

type AssistantChatInput struct {
	Messages []assistant.ChatMessage `json:"messages"`
}

// HandleAssistantChat forwards a conversation to the study assistant and
// returns its reply. The full history travels with every request; nothing
// is stored server-side.
func HandleAssistantChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if !deps.Assistant.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrAssistantUnavailable))
			return
		}

		var input AssistantChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := assistant.ValidateHistory(input.Messages); err != nil {
			logx.Warn("rejected assistant history", "user_id", identity.UserID, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		reply, err := deps.Assistant.Chat(r.Context(), input.Messages)
		if err != nil {
			logx.Error(err, "assistant upstream call failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrAssistantUpstream))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": reply,
		})
	}
}
