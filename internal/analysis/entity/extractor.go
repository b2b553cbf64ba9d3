// internal/analysis/entity/extractor.go

// Package entity scans intent text fields for recognizable domain entities
// using fixed pattern tables. Scans per kind are independent; overlapping
// and repeated mentions all yield entities, because downstream counts rely
// on raw mention frequency.
package entity

import (
	"strings"

	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// Scanned source fields.
const (
	FieldTitle      = "title"
	FieldAnswer     = "answer"
	FieldSlotPrompt = "slot_prompt"
)

type Extractor struct {
	tables []kindTable
	logger logger.Logger
}

type kindTable struct {
	kind     models.EntityKind
	triggers []string
}

// kindTables lists the trigger terms per entity kind. Order fixes the
// extraction order within one field, which keeps output reproducible.
func kindTables() []kindTable {
	return []kindTable{
		{models.EntityProduct, []string{
			"осаго", "каско", "дмс", "ипотек", "insurance", "страхован", "страховк", "полис",
		}},
		{models.EntityAction, []string{
			"оформ", "продл", "расторг", "оплат", "купить", "buy", "renew", "cancel", "pay", "extend",
		}},
		{models.EntityStatus, []string{
			"активн", "истек", "просроч", "active", "expired", "pending", "ожидан",
		}},
		{models.EntityChannel, []string{
			"viber", "telegram", "whatsapp", "messenger", "чат", "chat", "мобильн", "mobile",
		}},
		{models.EntityDocument, []string{
			"паспорт", "passport", "договор", "contract", "справк", "certificate", "лицензи", "license",
		}},
		{models.EntityLocation, []string{
			"офис", "office", "филиал", "branch", "город", "city", "регион", "region", "адрес", "address",
		}},
	}
}

func New(log logger.Logger) *Extractor {
	return &Extractor{
		tables: kindTables(),
		logger: log.WithFields(map[string]interface{}{"pass": "entity"}),
	}
}

// Extract returns all entity mentions of one intent, in field scan order:
// title first, then answer texts, then slot prompts. Pure; no dedup.
func (e *Extractor) Extract(intent *models.Intent) []models.Entity {
	var entities []models.Entity

	entities = append(entities, e.scanField(intent.IntentID, FieldTitle, intent.Title)...)

	for _, answer := range intent.Answers {
		entities = append(entities, e.scanField(intent.IntentID, FieldAnswer, answer.Answer)...)
	}

	for _, slot := range intent.Slots {
		entities = append(entities, e.scanField(intent.IntentID, FieldSlotPrompt, slot.FillPrompt)...)
	}

	return entities
}

// ExtractAll runs extraction over the whole set in input order.
func (e *Extractor) ExtractAll(intents []models.Intent) []models.Entity {
	var entities []models.Entity
	for i := range intents {
		entities = append(entities, e.Extract(&intents[i])...)
	}
	e.logger.Info("entities extracted", map[string]interface{}{"count": len(entities)})
	return entities
}

func (e *Extractor) scanField(intentID, field, text string) []models.Entity {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var found []models.Entity
	for _, table := range e.tables {
		for _, trigger := range table.triggers {
			count := strings.Count(lowered, trigger)
			for n := 0; n < count; n++ {
				found = append(found, models.Entity{
					Kind:     table.kind,
					Text:     trigger,
					Field:    field,
					IntentID: intentID,
				})
			}
		}
	}
	return found
}
