package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"fastfisher/domain/stats"
	"fastfisher/internal/errors"
)

const maxBodyBytes = 8 << 20

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"tolerance": s.engine.Tolerance(),
	})
}

// handleTest serves GET /v1/fisher?a=&b=&c=&d= with all three p-values.
func (s *Server) handleTest(c *gin.Context) {
	var cells [4]int
	for i, name := range []string{"a", "b", "c", "d"} {
		raw, ok := c.GetQuery(name)
		if !ok {
			s.writeError(c, errors.InvalidInput(fmt.Sprintf("missing query parameter %s", name)))
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(c, errors.InvalidInput(fmt.Sprintf("%s=%q is not an integer", name, raw)))
			return
		}
		cells[i] = v
	}

	t, err := stats.NewTable(cells[0], cells[1], cells[2], cells[3])
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.checkSupport(t); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTestResponse("", t, s.engine.Test(t)))
}

// handleExact serves POST /v1/fisher/exact with a body of the form
// {"table": [[a, b], [c, d]], "alternative": "two-sided"}.
func (s *Server) handleExact(c *gin.Context) {
	body, err := s.readJSON(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	alternative := "two-sided"
	if alt := gjson.GetBytes(body, "alternative"); alt.Exists() {
		alternative = alt.String()
	}
	m, err := parseMatrix(gjson.GetBytes(body, "table"), "table")
	if err != nil {
		s.writeError(c, err)
		return
	}

	// malformed tables fall through to Exact, which reports them
	if t, err := stats.TableFromMatrix(m); err == nil {
		if err := s.checkSupport(t); err != nil {
			s.writeError(c, err)
			return
		}
	}
	oddsRatio, p, err := s.engine.Exact(m, alternative)
	if err != nil {
		s.writeError(c, err)
		return
	}
	alt, _ := stats.ParseAlternative(alternative)
	c.JSON(http.StatusOK, ExactResponse{
		Alternative: alt.String(),
		OddsRatio:   jsonFloat(oddsRatio),
		PValue:      p,
	})
}

// handleBatch serves POST /v1/fisher/batch with a body of the form
// {"tables": [{"label": "x", "table": [[a, b], [c, d]]}, ...]}. Any invalid
// entry rejects the whole request.
func (s *Server) handleBatch(c *gin.Context) {
	body, err := s.readJSON(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	entries := gjson.GetBytes(body, "tables")
	if !entries.IsArray() {
		s.writeError(c, errors.InvalidInput(`"tables" must be an array`))
		return
	}
	items := entries.Array()
	if len(items) > maxBatchTables {
		s.writeError(c, errors.ValidationError(fmt.Sprintf("batch of %d tables exceeds %d", len(items), maxBatchTables)))
		return
	}

	tables := make([]stats.ContingencyTable, len(items))
	budget := batchSupportFactor * s.maxSupport
	for i, item := range items {
		path := fmt.Sprintf("tables[%d].table", i)
		m, err := parseMatrix(item.Get("table"), path)
		if err != nil {
			s.writeError(c, err)
			return
		}
		t, err := stats.TableFromMatrix(m)
		if err != nil {
			s.writeError(c, errors.Wrapf(errors.FromDomain(err), "%s", path))
			return
		}
		if err := s.checkSupport(t); err != nil {
			s.writeError(c, errors.Wrapf(err, "%s", path))
			return
		}
		if budget -= t.Marginals().SupportSize(); budget < 0 {
			s.writeError(c, errors.ValidationError(fmt.Sprintf(
				"batch exceeds %d support points in total", batchSupportFactor*s.maxSupport)))
			return
		}
		tables[i] = t
	}

	resp := BatchResponse{Results: make([]TestResponse, 0, len(items))}
	for i, t := range tables {
		resp.Results = append(resp.Results, newTestResponse(items[i].Get("label").String(), t, s.engine.Test(t)))
	}
	resp.Count = len(resp.Results)
	c.JSON(http.StatusOK, resp)
}

// checkSupport bounds the work one table may cost: the walk visits every
// member of its fixed-marginal family.
func (s *Server) checkSupport(t stats.ContingencyTable) error {
	if n := t.Marginals().SupportSize(); n > s.maxSupport {
		return errors.ValidationError(fmt.Sprintf("table %s spans %d support points, limit is %d", t, n, s.maxSupport))
	}
	return nil
}

func (s *Server) readJSON(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read body: %v", err))
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("body is not valid JSON")
	}
	return body, nil
}

// parseMatrix reads a JSON array of arrays of numbers. Shape is checked later
// by stats.TableFromMatrix.
func parseMatrix(r gjson.Result, path string) ([][]float64, error) {
	if !r.IsArray() {
		return nil, errors.InvalidInput(fmt.Sprintf("%q must be a 2x2 array", path))
	}
	rows := r.Array()
	m := make([][]float64, len(rows))
	for i, row := range rows {
		if !row.IsArray() {
			return nil, errors.InvalidInput(fmt.Sprintf("%s[%d] must be an array", path, i))
		}
		cells := row.Array()
		m[i] = make([]float64, len(cells))
		for j, cell := range cells {
			if cell.Type != gjson.Number {
				return nil, errors.InvalidInput(fmt.Sprintf("%s[%d][%d] must be a number", path, i, j))
			}
			m[i][j] = cell.Float()
		}
	}
	return m, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	err = errors.FromDomain(err)
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request error", "path", c.Request.URL.Path, "error", err)
		err = errors.InternalError("internal server error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}
