package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bidding/internal/domain"
	"bidding/models"
)

// Handler оборачивает прикладной сервис для HTTP
type Handler struct {
	Service  BiddingService
	Log      logrus.FieldLogger
	validate *validator.Validate
}

// NewHandler создает новый Handler
func NewHandler(svc BiddingService, log logrus.FieldLogger) *Handler {
	return &Handler{Service: svc, Log: log, validate: validator.New()}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Register подключает маршруты API к роутеру
func (h *Handler) Register(r chi.Router) {
	r.Get("/ping", h.PingHandler)
	// объявления
	r.Post("/biddings/new", h.CreateBiddingHandler)
	r.Get("/biddings", h.ListBiddingsHandler)
	r.Get("/biddings/number/{bidNumber}", h.GetBiddingByNumberHandler)
	r.Get("/biddings/{biddingId}", h.GetBiddingHandler)
	r.Patch("/biddings/{biddingId}/edit", h.EditBiddingHandler)
	r.Delete("/biddings/{biddingId}", h.DeleteBiddingHandler)
	r.Put("/biddings/{biddingId}/status", h.ChangeBiddingStatusHandler)
	r.Get("/biddings/{biddingId}/history", h.BiddingHistoryHandler)
	// приглашения
	r.Post("/biddings/{biddingId}/invitations", h.InviteHandler)
	r.Get("/biddings/{biddingId}/invitations", h.ListInvitationsHandler)
	r.Put("/invitations/{invitationId}/respond", h.RespondInvitationHandler)
	// предложения
	r.Post("/biddings/{biddingId}/participations", h.SubmitParticipationHandler)
	r.Get("/biddings/{biddingId}/participations", h.ListParticipationsHandler)
	r.Get("/participations/my", h.MyParticipationsHandler)
	r.Get("/participations/{participationId}", h.GetParticipationHandler)
	r.Patch("/participations/{participationId}/price", h.RepriceParticipationHandler)
	r.Put("/participations/{participationId}/confirm", h.ConfirmParticipationHandler)
	// оценки и выбор победителя
	r.Post("/biddings/{biddingId}/evaluations", h.CreateEvaluationHandler)
	r.Patch("/evaluations/{evaluationId}", h.UpdateScoresHandler)
	r.Put("/evaluations/{evaluationId}/cancel-selection", h.CancelSelectionHandler)
	r.Get("/evaluations/winners", h.ListWinnersHandler)
	r.Get("/biddings/{biddingId}/evaluations/top", h.TopScoredHandler)
	r.Put("/biddings/{biddingId}/winner", h.SelectAutomaticallyHandler)
	r.Put("/biddings/{biddingId}/winner/{evaluationId}", h.SelectManuallyHandler)
	// договоры
	r.Post("/biddings/{biddingId}/contracts", h.DraftContractHandler)
	r.Get("/contracts", h.ListContractsHandler)
	r.Get("/contracts/{contractId}", h.GetContractHandler)
	r.Put("/contracts/{contractId}/start", h.StartContractHandler)
	r.Put("/contracts/{contractId}/sign/buyer", h.SignContractHandler(domain.PartyBuyer))
	r.Put("/contracts/{contractId}/sign/supplier", h.SignContractHandler(domain.PartySupplier))
	r.Patch("/contracts/{contractId}/edit", h.EditContractHandler)
	r.Put("/contracts/{contractId}/cancel", h.CancelContractHandler)
	r.Get("/contracts/{contractId}/history", h.historyHandler(models.EntityContract, "contractId"))
	// заказы
	r.Post("/biddings/{biddingId}/orders", h.CreateOrderHandler)
	r.Get("/orders", h.ListOrdersHandler)
	r.Get("/orders/{orderId}", h.GetOrderHandler)
	r.Put("/orders/{orderId}/approve", h.ApproveOrderHandler)
	r.Put("/orders/{orderId}/delivery-date", h.UpdateDeliveryDateHandler)
	r.Put("/orders/{orderId}/cancel", h.CancelOrderHandler)
	r.Get("/orders/{orderId}/history", h.historyHandler(models.EntityOrder, "orderId"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	var params PaginationParams
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	params.Limit = 20 // дефолт
	params.Offset = 0

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

// pathID читает положительный id из параметра пути
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("invalid %s", name)
	}
	return id, nil
}

// actor находит пользователя по параметру username
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*models.Member, bool) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		http.Error(w, "Missing username parameter", http.StatusUnauthorized)
		return nil, false
	}
	m, err := h.Service.ResolveMember(r.Context(), username)
	if err != nil {
		if domain.KindOf(err) == domain.NotFound {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return nil, false
		}
		h.fail(w, r, err)
		return nil, false
	}
	return m, true
}

// decode читает JSON тело и проверяет его теги validate
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			http.Error(w, "Invalid request: "+strings.Join(fields, ", "), http.StatusBadRequest)
			return false
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor сопоставляет класс ошибки с HTTP статусом
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.NotFound:
		return http.StatusNotFound
	case domain.InvalidArgument:
		return http.StatusBadRequest
	case domain.IllegalState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Code: "internal", Message: "Internal server error"}
	var de *domain.Error
	if status != http.StatusInternalServerError && errors.As(err, &de) {
		resp = errorResponse{Code: de.Code, Message: de.Error()}
	} else {
		h.Log.WithError(err).WithField("url", r.URL.String()).Error("request failed")
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
