package httpapi

import (
	"net/http"

	"apexpos/backend/internal/domain"
)

func (a *API) handleListRepairs(w http.ResponseWriter, r *http.Request) {
	repairs, err := a.service.ListRepairs(r.Context())
	if err != nil {
		a.fail(w, r, err, "Repair")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(repairs))
}

func (a *API) handleCreateRepair(w http.ResponseWriter, r *http.Request) {
	var req domain.RepairCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	repair, err := a.service.CreateRepair(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Repair")
		return
	}
	writeJSON(w, http.StatusCreated, repair)
}

func (a *API) handleRepairStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	repair, err := a.service.UpdateRepairStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Repair")
		return
	}
	writeJSON(w, http.StatusOK, repair)
}

func (a *API) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	deliveries, err := a.service.ListDeliveries(r.Context())
	if err != nil {
		a.fail(w, r, err, "Delivery")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(deliveries))
}

func (a *API) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req domain.DeliveryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	delivery, err := a.service.CreateDelivery(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Delivery")
		return
	}
	writeJSON(w, http.StatusCreated, delivery)
}

func (a *API) handleDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	delivery, err := a.service.UpdateDeliveryStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Delivery")
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

func (a *API) handleDeleteDelivery(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteDelivery(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Delivery")
		return
	}
	writeMessage(w, http.StatusOK, "Delivery deleted successfully")
}

func (a *API) handleListHirePurchases(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.service.ListHirePurchases(r.Context())
	if err != nil {
		a.fail(w, r, err, "HP Account")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (a *API) handleCreateHirePurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.HirePurchaseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	account, err := a.service.CreateHirePurchase(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "HP Account")
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (a *API) handleCollectPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.CollectPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	account, err := a.service.CollectPayment(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "HP Account")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context())
	if err != nil {
		a.fail(w, r, err, "Expense")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(expenses))
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	expense, err := a.service.CreateExpense(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Expense")
		return
	}
	writeMessage(w, http.StatusOK, "Expense deleted successfully")
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := a.service.ListStaff(r.Context())
	if err != nil {
		a.fail(w, r, err, "Staff")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(staff))
}

func (a *API) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	staff, err := a.service.CreateStaff(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Staff")
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

func (a *API) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	staff, err := a.service.UpdateStaff(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Staff")
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (a *API) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteStaff(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Staff")
		return
	}
	writeMessage(w, http.StatusOK, "Staff deleted successfully")
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context())
	if err != nil {
		a.fail(w, r, err, "Customer")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(customers))
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Customer")
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	customer, err := a.service.UpdateCustomer(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Customer")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Customer")
		return
	}
	writeMessage(w, http.StatusOK, "Customer deleted successfully")
}

func (a *API) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.service.ListSuppliers(r.Context())
	if err != nil {
		a.fail(w, r, err, "Supplier")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(suppliers))
}

func (a *API) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.CreateSupplier(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Supplier")
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (a *API) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.UpdateSupplier(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.fail(w, r, err, "Supplier")
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (a *API) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteSupplier(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, "Supplier")
		return
	}
	writeMessage(w, http.StatusOK, "Supplier deleted successfully")
}

func (a *API) handleCreateReload(w http.ResponseWriter, r *http.Request) {
	var req domain.ReloadCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	reload, err := a.service.CreateReload(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Reload")
		return
	}
	writeJSON(w, http.StatusCreated, reload)
}

func (a *API) handleReloadHistory(w http.ResponseWriter, r *http.Request) {
	history, err := a.service.ReloadHistory(r.Context())
	if err != nil {
		a.fail(w, r, err, "Reload")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(history))
}

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := a.service.ListNotifications(r.Context())
	if err != nil {
		a.fail(w, r, err, "Notification")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(notifications))
}

func (a *API) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req domain.NotificationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	notification, err := a.service.CreateNotification(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Notification")
		return
	}
	writeJSON(w, http.StatusCreated, notification)
}

func (a *API) handleReadNotification(w http.ResponseWriter, r *http.Request) {
	notification, err := a.service.MarkNotificationRead(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, "Notification")
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

func (a *API) handleReadAllNotifications(w http.ResponseWriter, r *http.Request) {
	if _, err := a.service.MarkAllNotificationsRead(r.Context()); err != nil {
		a.fail(w, r, err, "Notification")
		return
	}
	writeMessage(w, http.StatusOK, "All notifications marked as read")
}

func (a *API) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if _, err := a.service.ClearNotifications(r.Context()); err != nil {
		a.fail(w, r, err, "Notification")
		return
	}
	writeMessage(w, http.StatusOK, "All notifications cleared")
}
