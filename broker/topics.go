package broker

import (
	"encoding/json"
	"log"

	"registro-accidentes/backend/models"
)

const (
	EventoCreatedSubject = "eventos.evento.created"
	EventoUpdatedSubject = "eventos.evento.updated"
	EventoDeletedSubject = "eventos.evento.deleted"
)

// PublishEvento publishes an evento lifecycle notification. Only identifying
// fields travel on the wire; consumers fetch the full record if they care.
func PublishEvento(subject string, evento *models.Evento) {
	payload, err := json.Marshal(map[string]interface{}{
		"id":        evento.ID,
		"tipo":      evento.Tipo,
		"estado":    evento.Estado,
		"prioridad": evento.Prioridad,
		"fecha":     evento.Fecha,
	})
	if err != nil {
		log.Printf("Failed to encode evento event: %v", err)
		return
	}
	PublishMessage(subject, payload)
}
