package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	actionConfigure = "configure"
	actionImport    = "import"
	actionSync      = "sync"
	actionFulfill   = "fulfill"
)

// DropshipHandler оборачивает DropshipUC в HTTP. Single-flight запусков и
// защита от повторной передачи заказа живут здесь, а не в ядре.
type DropshipHandler struct {
	uc      usecase.DropshipUC
	lock    usecase.RunLock
	lockTTL time.Duration
	logger  logger.Logger
}

func NewDropshipHandler(uc usecase.DropshipUC, lock usecase.RunLock, lockTTL time.Duration, logger logger.Logger) *DropshipHandler {
	return &DropshipHandler{uc: uc, lock: lock, lockTTL: lockTTL, logger: logger}
}

// configure
//
//	@Summary		Настройка поставщика
//	@Description	Добавляет запись в журнал конфигураций и делает её активной. Учётные данные в ответе замаскированы.
//	@Tags			dropship
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ConfigureRequest	true	"Конфигурация"
//	@Success		201		{object}	Envelope{data=ConfigResponse}
//	@Failure		400		{object}	Envelope
//	@Failure		401		{object}	Envelope
//	@Failure		403		{object}	Envelope
//	@Router			/dropship/config [post]
func (h *DropshipHandler) configure(w http.ResponseWriter, r *http.Request) {
	var req ConfigureRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.doConfigure(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, res)
}

// configHistory
//
//	@Summary		Журнал конфигураций
//	@Tags			dropship
//	@Produce		json
//	@Security		BearerAuth
//	@Param			provider	query		string	false	"Фильтр по поставщику"
//	@Param			limit		query		int		false	"Размер страницы"
//	@Success		200			{object}	Envelope{data=[]ConfigResponse}
//	@Failure		403			{object}	Envelope
//	@Router			/dropship/config/history [get]
func (h *DropshipHandler) configHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	req := &usecase.ConfigHistoryReq{Limit: limit}
	if raw := r.URL.Query().Get("provider"); raw != "" {
		p := domain.NormalizeProvider(raw)
		req.Provider = &p
	}

	views, err := h.uc.ConfigHistory(r.Context(), callerFromCtx(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]ConfigResponse, 0, len(views))
	for i := range views {
		out = append(out, newConfigResponse(&views[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

// importProducts
//
//	@Summary		Импорт товаров поставщика
//	@Description	Загружает листинг активного поставщика и добавляет новые товары в каталог. Повторный импорт идемпотентен.
//	@Tags			dropship
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ImportRequest	false	"Фильтр и лимит"
//	@Success		200		{object}	Envelope{data=ImportResponse}
//	@Failure		409		{object}	Envelope	"Импорт уже идёт"
//	@Failure		412		{object}	Envelope	"Нет активной конфигурации"
//	@Failure		502		{object}	Envelope	"Ошибка поставщика"
//	@Router			/dropship/import [post]
func (h *DropshipHandler) importProducts(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.doImport(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, res)
}

// syncInventory
//
//	@Summary		Сверка остатков
//	@Tags			dropship
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Envelope{data=SyncResponse}
//	@Failure		409	{object}	Envelope	"Сверка уже идёт"
//	@Failure		412	{object}	Envelope	"Нет активной конфигурации"
//	@Router			/dropship/sync [post]
func (h *DropshipHandler) syncInventory(w http.ResponseWriter, r *http.Request) {
	res, err := h.doSync(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, res)
}

// fulfillOrder
//
//	@Summary		Передача заказа поставщику
//	@Tags			dropship
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		FulfillRequest	true	"Заказ"
//	@Success		201		{object}	Envelope{data=FulfillmentResponse}
//	@Failure		409		{object}	Envelope	"Заказ уже передан"
//	@Failure		502		{object}	Envelope	"Поставщик отклонил заказ"
//	@Router			/dropship/fulfill [post]
func (h *DropshipHandler) fulfillOrder(w http.ResponseWriter, r *http.Request) {
	var req FulfillRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.doFulfill(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, res)
}

// fulfillmentByOrder
//
//	@Summary		Последняя попытка передачи заказа
//	@Tags			dropship
//	@Produce		json
//	@Security		BearerAuth
//	@Param			orderID	path		string	true	"Идентификатор заказа"
//	@Success		200		{object}	Envelope{data=FulfillmentResponse}
//	@Failure		404		{object}	Envelope
//	@Router			/dropship/fulfillments/{orderID} [get]
func (h *DropshipHandler) fulfillmentByOrder(w http.ResponseWriter, r *http.Request) {
	record, err := h.uc.FulfillmentByOrder(r.Context(), callerFromCtx(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, newFulfillmentResponse(record))
}

// syncLogs
//
//	@Summary		Журнал запусков
//	@Tags			dropship
//	@Produce		json
//	@Security		BearerAuth
//	@Param			operation	query		string	false	"import или sync"
//	@Param			limit		query		int		false	"Размер страницы"
//	@Success		200			{object}	Envelope{data=[]SyncLogResponse}
//	@Router			/dropship/sync-logs [get]
func (h *DropshipHandler) syncLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filter := usecase.SyncLogFilter{Limit: limit}
	switch op := domain.SyncOperation(r.URL.Query().Get("operation")); op {
	case "":
	case domain.SyncOperationImport, domain.SyncOperationSync:
		filter.Operation = &op
	default:
		h.fail(w, r, e.Invalid("unknown operation %q", op))
		return
	}

	entries, err := h.uc.SyncLogs(r.Context(), callerFromCtx(r.Context()), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]*SyncLogResponse, 0, len(entries))
	for i := range entries {
		out = append(out, newSyncLogResponse(&entries[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

// action
//
//	@Summary		Единая точка входа для действий
//	@Description	action: configure, import, sync или fulfill; payload совпадает с телом соответствующего маршрута.
//	@Tags			dropship
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ActionRequest	true	"Действие"
//	@Success		200		{object}	Envelope
//	@Failure		400		{object}	Envelope	"Неизвестное действие"
//	@Router			/dropship/actions [post]
func (h *DropshipHandler) action(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	var (
		data   any
		status = http.StatusOK
		err    error
	)

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case actionConfigure:
		var body ConfigureRequest
		if err = decodePayload(req.Payload, &body); err == nil {
			data, err = h.doConfigure(ctx, &body)
			status = http.StatusCreated
		}
	case actionImport:
		var body ImportRequest
		if err = decodePayload(req.Payload, &body); err == nil {
			data, err = h.doImport(ctx, &body)
		}
	case actionSync:
		data, err = h.doSync(ctx)
	case actionFulfill:
		var body FulfillRequest
		if err = decodePayload(req.Payload, &body); err == nil {
			data, err = h.doFulfill(ctx, &body)
			status = http.StatusCreated
		}
	default:
		err = e.Wrap(req.Action, e.ErrUnknownAction)
	}

	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, status, data)
}

func (h *DropshipHandler) doConfigure(ctx context.Context, req *ConfigureRequest) (*ConfigResponse, error) {
	view, err := h.uc.ConfigureAPI(ctx, callerFromCtx(ctx), req.toUC())
	if err != nil {
		return nil, err
	}
	res := newConfigResponse(view)
	return &res, nil
}

func (h *DropshipHandler) doImport(ctx context.Context, req *ImportRequest) (*ImportResponse, error) {
	ucReq, err := req.toUC()
	if err != nil {
		return nil, err
	}

	var res *usecase.ImportProductsRes
	err = h.withRunLock(ctx, domain.SyncOperationImport, func() error {
		res, err = h.uc.ImportProducts(ctx, callerFromCtx(ctx), ucReq)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := newImportResponse(res)
	return &out, nil
}

func (h *DropshipHandler) doSync(ctx context.Context) (*SyncResponse, error) {
	var (
		res *usecase.SyncInventoryRes
		err error
	)
	err = h.withRunLock(ctx, domain.SyncOperationSync, func() error {
		res, err = h.uc.SyncInventory(ctx, callerFromCtx(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	out := newSyncResponse(res)
	return &out, nil
}

func (h *DropshipHandler) doFulfill(ctx context.Context, req *FulfillRequest) (*FulfillmentResponse, error) {
	caller := callerFromCtx(ctx)

	if err := h.ensureNotFulfilled(ctx, caller, req.OrderID); err != nil {
		return nil, err
	}

	res, err := h.uc.FulfillOrder(ctx, caller, req.toUC())
	if err != nil {
		return nil, err
	}

	out := newFulfillmentResponse(res.Record)
	return &out, nil
}

// ensureNotFulfilled возвращает e.ErrOrderAlreadyFulfilled, если последняя попытка по заказу успешна.
func (h *DropshipHandler) ensureNotFulfilled(ctx context.Context, caller domain.Caller, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		// пустой order_id отклонит сам диспетчер
		return nil
	}

	record, err := h.uc.FulfillmentByOrder(ctx, caller, orderID)
	switch {
	case errors.Is(err, e.ErrNotFound):
		return nil
	case err != nil:
		return err
	case record.Status == domain.FulfillmentStatusSent:
		return e.Wrap(orderID, e.ErrOrderAlreadyFulfilled)
	default:
		return nil
	}
}

// withRunLock держит блокировку вида операции на время fn. Если занята, e.ErrRunInProgress.
func (h *DropshipHandler) withRunLock(ctx context.Context, op domain.SyncOperation, fn func() error) error {
	if !callerFromCtx(ctx).IsAdmin() {
		// без прав блокировку не берём, отказ вернёт сервис
		return fn()
	}

	release, err := h.lock.Acquire(ctx, string(op), h.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			h.logger.Errorf(err, "failed to release %s run lock", op)
		}
	}()

	return fn()
}

func (h *DropshipHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%d %s %s", code, r.Method, r.URL.Path)
	} else {
		h.logger.Warnf("%d %s %s: %v", code, r.Method, r.URL.Path, err)
	}
	WriteError(w, err)
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Invalid("malformed payload: %v", err)
	}
	return nil
}
