package handler

import "net/http"

// PollingStatus reports the background polling configuration and whether
// a cycle is currently running.
func (h *Handler) PollingStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sched.Status())
}

// PollingRun triggers one poll cycle outside the schedule and waits for
// it. A cycle already in flight is never doubled up on.
func (h *Handler) PollingRun(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.sched.RunNow(r.Context())
	if !ok {
		h.writeError(w, http.StatusConflict, "poll cycle already running")
		return
	}
	h.writeJSON(w, http.StatusAccepted, summary)
}
