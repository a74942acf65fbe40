package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stemcert/backend/core/assessment"
	"github.com/stemcert/backend/core/trainer"
	reportsvc "github.com/stemcert/backend/services/report"
)

func registerTrainerAPI(g *echo.Group, jwt echo.MiddlewareFunc, trainerSvc *trainer.Service, assessSvc *assessment.Service) {
	api := trainerAPI{trainers: trainerSvc, assessments: assessSvc}

	evaluator := evaluatorMiddleware()

	tg := g.Group("/trainers", jwt)
	tg.GET("", api.queryAll)
	tg.POST("", api.create, evaluator)
	tg.GET("/:id", api.retrieve)
	tg.GET("/:id/progress", api.progress)
	tg.GET("/:id/assessments", api.history)
	tg.POST("/:id/assessments", api.submit, evaluator)
	tg.GET("/:id/report.csv", api.reportCSV)
	tg.GET("/:id/report.pdf", api.reportPDF)
	tg.POST("/:id/scorecard", api.sendScoreCard, evaluator)
	tg.POST("/:id/reminder", api.sendReminder, evaluator)
}

type trainerAPI struct {
	trainers    *trainer.Service
	assessments *assessment.Service
}

func (api *trainerAPI) queryAll(ctx echo.Context) error {
	qf := new(trainer.QueryFilter)
	if err := ctx.Bind(qf); err != nil {
		return err
	}

	recs, err := api.trainers.Filter(*qf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *trainerAPI) create(ctx echo.Context) error {
	data := new(trainer.NewTrainer)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.trainers.Create(*data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *trainerAPI) retrieve(ctx echo.Context) error {
	rec, err := api.trainers.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *trainerAPI) progress(ctx echo.Context) error {
	prog, err := api.assessments.Progress(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *trainerAPI) history(ctx echo.Context) error {
	rows, err := api.assessments.History(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

// submit records an assessment. The evaluator identity always comes from
// the token, never from the request body.
func (api *trainerAPI) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	draft := new(assessment.SubmissionDraft)
	if err := ctx.Bind(draft); err != nil {
		return err
	}
	draft.TrainerID = ctx.Param("id")
	draft.EvaluatorUsername = claims.Username
	draft.EvaluatorRole = claims.Role

	row, warnings, err := api.assessments.Submit(*draft)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"row":      row,
		"warnings": warnings,
	})
}

func (api *trainerAPI) reportCSV(ctx echo.Context) error {
	id := ctx.Param("id")
	rows, err := api.assessments.History(id)
	if err != nil {
		return err
	}

	text, err := reportsvc.CSVText(rows)
	if err != nil {
		return err
	}
	setAttachmentHeader(ctx, fmt.Sprintf("trainer_%s_assessment.csv", id))
	return ctx.Blob(http.StatusOK, "text/csv", []byte(text))
}

func (api *trainerAPI) reportPDF(ctx echo.Context) error {
	id := ctx.Param("id")
	rows, err := api.assessments.History(id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errHttpNotFound
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	role, _ := assessment.ParseRole(claims.Role)

	doc, err := reportsvc.PDF(rows, role)
	if err != nil {
		return err
	}
	setAttachmentHeader(ctx, fmt.Sprintf("trainer_%s_assessment.pdf", id))
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

func (api *trainerAPI) sendScoreCard(ctx echo.Context) error {
	data := new(ScoreCardRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	msg, err := api.assessments.SendScoreCard(ctx.Param("id"), assessment.Level(data.Level))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"sent":   true,
		"mailto": msg.MailtoURL(),
	})
}

func (api *trainerAPI) sendReminder(ctx echo.Context) error {
	data := new(ReminderRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	msg, err := api.assessments.SendReminder(ctx.Param("id"), assessment.Level(data.Level), data.Email, data.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"sent":   true,
		"mailto": msg.MailtoURL(),
	})
}

func setAttachmentHeader(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}
