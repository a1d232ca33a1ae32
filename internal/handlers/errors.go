package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/business-scheduler/internal/httperr"
)

type errorInfo struct {
	status  int
	message string
}

// businessErrors maps every business code a use case can return to the HTTP
// answer the API gives for it.
var businessErrors = map[string]errorInfo{
	// 404
	"business_not_found":     {http.StatusNotFound, "Negócio não encontrado."},
	"branch_not_found":       {http.StatusNotFound, "Unidade não encontrada."},
	"professional_not_found": {http.StatusNotFound, "Profissional não encontrado."},
	"service_not_found":      {http.StatusNotFound, "Serviço não encontrado."},
	"appointment_not_found":  {http.StatusNotFound, "Agendamento não encontrado."},

	// 409
	"slot_taken":         {http.StatusConflict, "Horário indisponível."},
	"conflict_on_commit": {http.StatusConflict, "Horário foi reservado por outra pessoa. Tente novamente."},

	// 422
	"past_booking":          {http.StatusUnprocessableEntity, "Não é possível agendar no passado."},
	"crosses_day_boundary":  {http.StatusUnprocessableEntity, "O atendimento precisa terminar no mesmo dia."},
	"outside_working_hours": {http.StatusUnprocessableEntity, "Horário fora do expediente."},
	"too_soon":              {http.StatusUnprocessableEntity, "Agendamento exige antecedência mínima."},
	"invalid_state":         {http.StatusUnprocessableEntity, "Ação não permitida para o status atual."},

	// 400
	"invalid_range":        {http.StatusBadRequest, "Intervalo inválido."},
	"range_too_large":      {http.StatusBadRequest, "Período muito longo."},
	"invalid_duration":     {http.StatusBadRequest, "Duração inválida."},
	"invalid_date":         {http.StatusBadRequest, "Data inválida."},
	"invalid_date_or_time": {http.StatusBadRequest, "Data ou hora inválida."},
	"invalid_month":        {http.StatusBadRequest, "Mês inválido."},
}

// writeError answers err. Business errors get their mapped status; anything
// else is recorded on the context for the request logger and becomes a 500.
func writeError(c *gin.Context, err error, internalCode string) {
	if code := httperr.Code(err); code != "" {
		if info, ok := businessErrors[code]; ok {
			httperr.Write(c, info.status, code, info.message)
			return
		}
		httperr.BadRequest(c, code, "Requisição inválida.")
		return
	}

	_ = c.Error(err)
	httperr.Internal(c, internalCode, "Erro interno. Tente novamente.")
}
