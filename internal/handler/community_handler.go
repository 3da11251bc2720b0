package handler

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"educonnect/internal/app/db"
	"educonnect/internal/app/store"
	"educonnect/internal/app/user"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/randx"
	"educonnect/internal/pkg/req"
	"educonnect/internal/pkg/resp"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommunityView is the API representation of a community.
type CommunityView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InviteCode  string `json:"inviteCode,omitempty"`
	CreatedBy   string `json:"createdBy"`
	MemberCount int64  `json:"memberCount"`
}

func toCommunityView(c store.Community, memberCount int64) CommunityView {
	return CommunityView{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		InviteCode:  c.InviteCode,
		CreatedBy:   c.CreatedBy.String(),
		MemberCount: memberCount,
	}
}

type CreateCommunityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateCommunity creates a community, makes the creator its first
// member, and attaches the creator's live connections to the new channel.
func HandleCreateCommunity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CreateCommunityInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		nameLen := utf8.RuneCountInString(input.Name)
		if nameLen < 2 || nameLen > 100 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if utf8.RuneCountInString(input.Description) > 500 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var creatorUUID pgtype.UUID
		if err := creatorUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		inviteCode, err := randx.InviteCode()
		if err != nil {
			logx.Error(err, "failed to generate invite code")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		community, err := deps.DB.CreateCommunity(r.Context(), store.CreateCommunityParams{
			Name:        input.Name,
			Description: input.Description,
			InviteCode:  inviteCode,
			CreatedBy:   creatorUUID,
		})
		if err != nil {
			logx.Error(err, "failed to create community")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		err = deps.DB.AddCommunityMember(r.Context(), store.CommunityMemberParams{
			CommunityID: community.ID,
			UserID:      creatorUUID,
		})
		if err != nil {
			logx.Error(err, "failed to add creator as community member",
				"community_id", community.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.SubscribeUser(identity.UserID, community.ID.String())

		resp.RespondSuccess(w, r, map[string]any{
			"community": toCommunityView(community, 1),
		})
	}
}

// HandleListCommunities returns all communities with member counts.
func HandleListCommunities(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := deps.DB.ListCommunities(r.Context())
		if err != nil {
			logx.Error(err, "failed to list communities")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		views := make([]CommunityView, 0, len(rows))
		for _, row := range rows {
			views = append(views, toCommunityView(row.Community, row.MemberCount))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"communities": views,
		})
	}
}

type JoinCommunityInput struct {
	CommunityID string `json:"communityId"`
	InviteCode  string `json:"inviteCode"`
}

// HandleJoinCommunity adds the caller to a community, addressed either by ID
// or by invite code. Live connections of the caller start receiving the
// community's traffic immediately.
func HandleJoinCommunity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input JoinCommunityInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var community store.Community
		var err error
		switch {
		case input.InviteCode != "":
			if !randx.IsValidInviteCode(input.InviteCode) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInviteCodeInvalid))
				return
			}
			community, err = deps.DB.GetCommunityByInviteCode(r.Context(), input.InviteCode)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					resp.RespondError(w, r, errs.NewError(errs.ErrInviteCodeInvalid))
					return
				}
				logx.Error(err, "failed to fetch community by invite code")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
		case input.CommunityID != "":
			var communityUUID pgtype.UUID
			if scanErr := communityUUID.Scan(input.CommunityID); scanErr != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			community, err = deps.DB.GetCommunityByID(r.Context(), communityUUID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					resp.RespondError(w, r, errs.NewError(errs.ErrCommunityNotFound))
					return
				}
				logx.Error(err, "failed to fetch community", "community_id", input.CommunityID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		err = deps.DB.AddCommunityMember(r.Context(), store.CommunityMemberParams{
			CommunityID: community.ID,
			UserID:      userUUID,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyMember))
				return
			}
			logx.Error(err, "failed to add community member",
				"community_id", community.ID.String(), "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.SubscribeUser(identity.UserID, community.ID.String())

		resp.RespondSuccess(w, r, map[string]any{
			"community": toCommunityView(community, 0),
		})
	}
}

// HandleLeaveCommunity removes the caller from a community and detaches
// their live connections from its channel.
func HandleLeaveCommunity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var communityUUID pgtype.UUID
		if err := communityUUID.Scan(chi.URLParam(r, "communityID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		existed, err := deps.DB.RemoveCommunityMember(r.Context(), store.CommunityMemberParams{
			CommunityID: communityUUID,
			UserID:      userUUID,
		})
		if err != nil {
			logx.Error(err, "failed to remove community member",
				"community_id", communityUUID.String(), "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !existed {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotMember))
			return
		}

		deps.Hub.UnsubscribeUser(identity.UserID, communityUUID.String())

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleListCommunityMembers returns the members of a community with their
// live presence status.
func HandleListCommunityMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var communityUUID pgtype.UUID
		if err := communityUUID.Scan(chi.URLParam(r, "communityID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.DB.GetCommunityByID(r.Context(), communityUUID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCommunityNotFound))
				return
			}
			logx.Error(err, "failed to fetch community", "community_id", communityUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		members, err := deps.DB.ListCommunityMembers(r.Context(), communityUUID)
		if err != nil {
			logx.Error(err, "failed to list community members", "community_id", communityUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		views := make([]user.User, 0, len(members))
		for _, m := range members {
			views = append(views, deps.toPublicUserView(m))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"members": views,
		})
	}
}
