package editor

// Code identifies why an edit was rejected.
type Code string

const (
	CodeExamLocked      Code = "EXAM_LOCKED"
	CodeWatermarkLocked Code = "WATERMARK_LOCKED"
	CodeQuestionLimit   Code = "QUESTION_LIMIT"
	CodeRedactionLock   Code = "REDACTION_LOCK"
	CodeHeaderExists    Code = "HEADER_EXISTS"
	CodeBlockNotFound   Code = "BLOCK_NOT_FOUND"
	CodeInvalidType     Code = "INVALID_BLOCK_TYPE"
	CodeDuplicateBlock  Code = "DUPLICATE_BLOCK_ID"
)

// Result reports the outcome of a mutation. A rejected mutation leaves the
// surface untouched and carries a human-readable reason.
type Result struct {
	Applied bool   `json:"applied"`
	Code    Code   `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	BlockID string `json:"block_id,omitempty"`
}

func applied(blockID string) Result {
	return Result{Applied: true, BlockID: blockID}
}

func rejected(code Code) Result {
	return Result{Code: code, Reason: reason(code)}
}

func reason(code Code) string {
	switch code {
	case CodeExamLocked:
		return "A prova já foi publicada e não pode mais ser editada."
	case CodeWatermarkLocked:
		return "A marca d'água não pode ser movida, editada ou removida."
	case CodeQuestionLimit:
		return "A prova já atingiu o limite de 10 questões."
	case CodeRedactionLock:
		return "Provas de redação permitem apenas uma questão."
	case CodeHeaderExists:
		return "A prova já possui um cabeçalho."
	case CodeBlockNotFound:
		return "Bloco não encontrado."
	case CodeInvalidType:
		return "Tipo de bloco desconhecido."
	case CodeDuplicateBlock:
		return "Dois blocos não podem ter o mesmo identificador."
	default:
		return "Operação não permitida."
	}
}
