package handler

import (
	"errors"
	"net/http"

	"educonnect/internal/app/db"
	"educonnect/internal/app/storage"
	"educonnect/internal/app/store"
	"educonnect/internal/pkg/auth/jwt"
	"educonnect/internal/pkg/errs"
	"educonnect/internal/pkg/logx"
	"educonnect/internal/pkg/resp"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// enrollmentPoints is credited to a user's engagement score on each enrollment.
const enrollmentPoints = 10

// CourseView is the API representation of a catalog course.
type CourseView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	Instructor    string `json:"instructor,omitempty"`
	EnrolledCount int64  `json:"enrolledCount"`
}

// MaterialView is the API representation of a course material. The file
// itself is fetched through the material download endpoint.
type MaterialView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

func toCourseView(c store.Course, enrolledCount int64) CourseView {
	return CourseView{
		ID:            c.ID.String(),
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Instructor:    c.Instructor,
		EnrolledCount: enrolledCount,
	}
}

// HandleListCourses returns the course catalog.
func HandleListCourses(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := deps.DB.ListCourses(r.Context())
		if err != nil {
			logx.Error(err, "failed to list courses")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		views := make([]CourseView, 0, len(rows))
		for _, row := range rows {
			views = append(views, toCourseView(row.Course, row.EnrolledCount))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"courses": views,
		})
	}
}

// HandleGetCourse returns a single course with its material list.
func HandleGetCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var courseUUID pgtype.UUID
		if err := courseUUID.Scan(chi.URLParam(r, "courseID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		course, err := deps.DB.GetCourseByID(r.Context(), courseUUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCourseNotFound))
				return
			}
			logx.Error(err, "failed to fetch course", "course_id", courseUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		materials, err := deps.DB.ListCourseMaterials(r.Context(), courseUUID)
		if err != nil {
			logx.Error(err, "failed to list course materials", "course_id", courseUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		materialViews := make([]MaterialView, 0, len(materials))
		for _, m := range materials {
			materialViews = append(materialViews, MaterialView{
				ID:    m.ID.String(),
				Title: m.Title,
				Kind:  m.Kind,
			})
		}

		resp.RespondSuccess(w, r, map[string]any{
			"course":    toCourseView(course, 0),
			"materials": materialViews,
		})
	}
}

// HandleEnrollCourse enrolls the caller in a course. Enrollment bumps the
// denormalized counters on the user row; a failure there is logged but does
// not undo the enrollment itself.
func HandleEnrollCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var courseUUID pgtype.UUID
		if err := courseUUID.Scan(chi.URLParam(r, "courseID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.DB.GetCourseByID(r.Context(), courseUUID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCourseNotFound))
				return
			}
			logx.Error(err, "failed to fetch course", "course_id", courseUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		var userUUID pgtype.UUID
		if err := userUUID.Scan(identity.UserID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		err := deps.DB.CreateEnrollment(r.Context(), store.CreateEnrollmentParams{
			CourseID: courseUUID,
			UserID:   userUUID,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyEnrolled))
				return
			}
			logx.Error(err, "failed to create enrollment",
				"course_id", courseUUID.String(), "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.DB.IncrementCoursesEnrolled(r.Context(), userUUID); err != nil {
			logx.Error(err, "failed to bump enrollment counter", "user_id", identity.UserID)
		}
		if err := deps.DB.AddPoints(r.Context(), userUUID, enrollmentPoints); err != nil {
			logx.Error(err, "failed to credit enrollment points", "user_id", identity.UserID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"pointsEarned": enrollmentPoints,
		})
	}
}

// HandleMaterialDownload redirects to a presigned GET URL for a course material.
func HandleMaterialDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var materialUUID pgtype.UUID
		if err := materialUUID.Scan(chi.URLParam(r, "materialID")); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		material, err := deps.DB.GetCourseMaterial(r.Context(), materialUUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMaterialNotFound))
				return
			}
			logx.Error(err, "failed to fetch course material", "material_id", materialUUID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if material.FileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileKeyInvalid))
			return
		}

		downloadURL, err := deps.Storage.PresignDownload(r.Context(), material.FileKey, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "failed to presign material download", "key", material.FileKey)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.Redirect(w, r, downloadURL, http.StatusTemporaryRedirect)
	}
}
