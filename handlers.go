package otfmaturity

import (
	"bytes"
	"io"
	"math"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nsip/otf-maturity/internal/export"
	"github.com/nsip/otf-maturity/internal/model"
	"github.com/nsip/otf-maturity/internal/scoring"
	"github.com/pkg/errors"
)

//
// returns the questionnaire grouped by pillar, for rendering
// the assessment form.
// optional query param url overrides the configured workbook.
//
func (s *OtfMaturityService) buildModelHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		id := ""
		if u := c.QueryParam("url"); u != "" {
			id = urlModelID(u)
		}
		q, err := s.questionnaire(c.Request().Context(), id)
		if err != nil {
			return s.httpError(err)
		}
		return c.JSON(http.StatusOK, modelResponse(q))
	}
}

//
// accepts a workbook as multipart field "file"
//
func (s *OtfMaturityService) buildUploadHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "must supply the questionnaire workbook as form field 'file'")
		}
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		q, err := s.upload(c.Request().Context(), data)
		if err != nil {
			return s.httpError(err)
		}
		return c.JSON(http.StatusOK, modelResponse(q))
	}
}

//
// scores the submitted ratings
//
func (s *OtfMaturityService) buildScoreHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.sessionFromRequest(c)
		if err != nil {
			return s.httpError(err)
		}
		res := sess.Score()
		s.observe(res)

		return c.JSON(http.StatusOK, map[string]interface{}{
			"modelId":             sess.Questionnaire.ID,
			"participant":         sess.Participant,
			"pillars":             pillarsResponse(res.Pillars),
			"requirements":        rowsResponse(res.Rows),
			"global":              globalResponse(res.Global),
			"diagnostics":         diagnosticsResponse(res.Diagnostics),
			"warnings":            weightWarnings(sess.Questionnaire),
			"maturityServiceID":   s.serviceID,
			"maturityServiceName": s.serviceName,
		})
	}
}

//
// scores the submitted ratings and returns the result
// table as a csv download
//
func (s *OtfMaturityService) buildExportHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.sessionFromRequest(c)
		if err != nil {
			return s.httpError(err)
		}
		res := sess.Score()

		var buf bytes.Buffer
		err = export.Write(&buf, export.Sheet{Participant: sess.Participant, Result: res, At: s.now()})
		if err == export.ErrNameRequired {
			return echo.NewHTTPError(http.StatusBadRequest, "fill in the participant name to save the result")
		}
		if err != nil {
			return s.httpError(err)
		}
		s.observe(res)
		s.metrics.exports.Inc()

		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(sess.Participant.Name)})
		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

func (s *OtfMaturityService) sessionFromRequest(c echo.Context) (*Session, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, badRequest("cannot read request body: %v", err)
	}
	return s.newSession(c.Request().Context(), body)
}

func (s *OtfMaturityService) observe(res scoring.Result) {
	s.metrics.scorings.Inc()
	if res.Global.Defined() {
		s.metrics.globalLevel.Observe(res.Global.WeightedLevel)
	}
}

//
// maps load and request failures to http errors carrying
// a message the participant can act on
//
func (s *OtfMaturityService) httpError(err error) error {
	var (
		se *model.SchemaError
		le *model.LoadError
		re *requestError
	)
	switch {
	case errors.As(err, &re):
		return echo.NewHTTPError(http.StatusBadRequest, re.Error())
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
			"message":    se.Error(),
			"missing":    se.Missing,
			"duplicates": se.Duplicates,
			"hint":       "check the column headers of sheet '" + model.SheetName + "'",
		})
	case errors.As(err, &le):
		return echo.NewHTTPError(http.StatusBadGateway, echo.Map{
			"message": le.Error(),
			"hint":    "check the spreadsheet is shared for anyone with the link, or upload the file instead",
		})
	case errors.Is(err, errModelNotFound):
		return echo.NewHTTPError(http.StatusNotFound, echo.Map{
			"message": err.Error(),
			"hint":    "the uploaded questionnaire has expired, upload the file again",
		})
	default:
		s.e.Logger.Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func modelResponse(q *questionnaire) map[string]interface{} {
	return map[string]interface{}{
		"modelId":  q.ID,
		"source":   q.Source,
		"pillars":  model.GroupByPillar(q.Rows),
		"warnings": weightWarnings(q),
	}
}

func weightWarnings(q *questionnaire) []model.ParseWarning {
	if q.Warnings == nil {
		return []model.ParseWarning{}
	}
	return q.Warnings
}

func pillarsResponse(ps []scoring.PillarAggregate) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, map[string]interface{}{
			"pillar":            p.Pillar,
			"meanRating":        optional(p.MeanRating),
			"totalWeight":       p.TotalWeight,
			"totalContribution": p.TotalContribution,
			"itemCount":         p.ItemCount,
			"ratedCount":        p.RatedCount,
		})
	}
	return out
}

func rowsResponse(rows []scoring.RowScore) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		var level interface{}
		if r.Rated {
			level = r.Level
		}
		out = append(out, map[string]interface{}{
			"pillar":       r.Row.Pillar,
			"code":         r.Row.Code,
			"level":        level,
			"weight":       r.Row.Weight,
			"contribution": r.Contribution,
		})
	}
	return out
}

func globalResponse(g scoring.GlobalScore) map[string]interface{} {
	return map[string]interface{}{
		"level":          optional(g.WeightedLevel),
		"interpretation": g.Interpretation,
	}
}

func diagnosticsResponse(d scoring.Diagnostics) map[string]interface{} {
	return map[string]interface{}{
		"rated":         d.Rated,
		"shareAtLeast4": optional(d.ShareAtLeast4),
		"shareAtMost2":  optional(d.ShareAtMost2),
	}
}

// json has no NaN; undefined values become null
func optional(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
