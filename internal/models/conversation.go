package models

import "time"

// Turn is one question/answer pair. The JSON keys match the stored
// history format and the prompt serialization, so they stay in pt-BR.
type Turn struct {
	Question string `json:"pergunta"`
	Answer   string `json:"resposta"`
}

// Conversation holds the ordered turn history of one diagnostic dialogue.
// Turns are only ever appended; insertion order is conversation order.
type Conversation struct {
	ID        int64     `db:"id"`
	History   []Turn    `db:"history"`
	CreatedAt time.Time `db:"created_at"`
}
