package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"thermogauge/internal/modules/converter/service"
	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/modules/converter/views"
	"thermogauge/internal/temperature"
	"thermogauge/internal/utils"
)

func (c *converterControllerImpl) handleConverter(w http.ResponseWriter, r *http.Request) {
	data := views.ConverterData{Title: "Converter"}
	if r.URL.Query().Has("celsius") {
		input := r.URL.Query().Get("celsius")
		data.Input = input
		res, err := c.service.Preview(types.Request{Input: input, Source: types.SourceWeb})
		var verr *temperature.ValidationError
		switch {
		case err == nil:
			rv := views.NewResultView(res)
			data.Result = &rv
		case errors.As(err, &verr):
			data.Error = &views.ErrorView{Message: verr.Kind.Message(), Kind: verr.Kind.String()}
		default:
			slog.Error("converter: preview failed", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to convert")
			return
		}
	}

	var buf bytes.Buffer
	if err := views.RenderConverter(&buf, &data); err != nil {
		slog.Error("converter template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, buf.Bytes())
}

// handleConvertPartial answers the HTMX form post. Validation failures are
// rendered as a 200 error fragment so HTMX swaps them in like any result.
func (c *converterControllerImpl) handleConvertPartial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	input := r.PostFormValue("celsius")

	res, err := c.service.Convert(r.Context(), types.Request{Input: input, Source: types.SourceWeb})

	var buf bytes.Buffer
	var verr *temperature.ValidationError
	switch {
	case errors.As(err, &verr):
		err = views.RenderErrorPartial(&buf, &views.ErrorView{Message: verr.Kind.Message(), Kind: verr.Kind.String()})
	case errors.Is(err, service.ErrDecimalsOutOfRange):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	default:
		if err != nil {
			// stored nothing, but the user still gets the numbers
			slog.Warn("convert: result not recorded", "error", err)
		}
		rv := views.NewResultView(res)
		err = views.RenderResultPartial(&buf, &rv)
	}
	if err != nil {
		slog.Error("convert partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, buf.Bytes())
}

func (c *converterControllerImpl) handleHistory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderHistory(&buf, &views.HistoryParams{Title: "History"}); err != nil {
		slog.Error("history template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, buf.Bytes())
}

// buildHistoryPageItems returns page numbers and ellipsis for the pagination bar.
func buildHistoryPageItems(totalPages, currentPage int) []views.PaginationItem {
	if totalPages <= 0 {
		return nil
	}
	const window = 2
	show := map[int]bool{1: true, totalPages: true}
	for p := currentPage - window; p <= currentPage+window; p++ {
		if p >= 1 && p <= totalPages {
			show[p] = true
		}
	}
	var items []views.PaginationItem
	prev := 0
	for p := 1; p <= totalPages; p++ {
		if !show[p] {
			continue
		}
		if prev != 0 && p > prev+1 {
			items = append(items, views.PaginationItem{Ellipsis: true})
		}
		items = append(items, views.PaginationItem{Page: p, Ellipsis: false})
		prev = p
	}
	return items
}

func (c *converterControllerImpl) handleHistoryPartial(w http.ResponseWriter, r *http.Request) {
	page := parseHistoryPage(r)

	hp, err := c.service.History(r.Context(), page, c.pageSize)
	if err != nil {
		slog.Error("history: load page failed", "page", page, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load conversions")
		return
	}

	data := views.HistoryData{
		Rows:        views.NewConversionRows(hp.Items),
		Total:       hp.Total,
		CurrentPage: hp.Page,
		TotalPages:  hp.TotalPages,
		HasPrev:     hp.Page > 1,
		HasNext:     hp.Page < hp.TotalPages,
		PrevPage:    hp.Page - 1,
		NextPage:    hp.Page + 1,
		PageItems:   buildHistoryPageItems(hp.TotalPages, hp.Page),
	}
	var buf bytes.Buffer
	if err := views.RenderHistoryPartial(&buf, &data); err != nil {
		slog.Error("history partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, buf.Bytes())
}

func (c *converterControllerImpl) handleStationsPartial(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		slog.Error("stations: load failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	var buf bytes.Buffer
	if err := views.RenderStationsPartial(&buf, &views.StationsData{Stations: views.NewConversionRows(stations)}); err != nil {
		slog.Error("stations partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, buf.Bytes())
}

func (c *converterControllerImpl) handleAPIConvert(w http.ResponseWriter, r *http.Request) {
	decimals, err := parseDecimalsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.service.Convert(r.Context(), types.Request{
		Input:    r.URL.Query().Get("celsius"),
		Decimals: decimals,
		Source:   types.SourceAPI,
	})
	var verr *temperature.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteKindError(w, http.StatusUnprocessableEntity, verr.Kind.String(), verr.Kind.Message())
		return
	case errors.Is(err, service.ErrDecimalsOutOfRange):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Warn("api convert: result not recorded", "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

type validateRequest struct {
	Input string `json:"input"`
}

func (c *converterControllerImpl) handleAPIValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, temperature.Validate(req.Input))
}

func (c *converterControllerImpl) handleAPIConversions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := c.service.Recent(r.Context(), limit)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []types.Conversion{}
	}
	utils.WriteJSON(w, http.StatusOK, items)
}
