package bmi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fittrack/web/internal/telemetry/tracing"
	"github.com/fittrack/web/pkg"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/api/bmi", handler.handleCalculate).Methods("GET").Name("bmi")
}

func (handler *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "bmiHandler.calculate")
	defer span.End()

	weight, errW := strconv.ParseFloat(r.URL.Query().Get("weight"), 64)
	height, errH := strconv.ParseFloat(r.URL.Query().Get("height"), 64)
	if err := errors.Join(errW, errH); err != nil {
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteMessage(w, http.StatusBadRequest, ErrInvalidInput.Error())
		return
	}

	result, err := Calculate(weight, height)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	span.SetAttributes(attribute.String("bmi.category", string(result.Category)))
	pkg.WriteJSON(w, http.StatusOK, result)
}
