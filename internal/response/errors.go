package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrNotExamAuthor ErrCode = "NOT_EXAM_AUTHOR"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam editing ──────────────────────────────────────────────────
	ErrExamLocked       ErrCode = "EXAM_LOCKED"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrWatermarkLocked  ErrCode = "WATERMARK_LOCKED"
	ErrQuestionLimit    ErrCode = "QUESTION_LIMIT"
	ErrRedactionLock    ErrCode = "REDACTION_LOCK"
	ErrHeaderExists     ErrCode = "HEADER_EXISTS"
	ErrBlockNotFound    ErrCode = "BLOCK_NOT_FOUND"
	ErrInvalidBlockType ErrCode = "INVALID_BLOCK_TYPE"
	ErrDuplicateBlock   ErrCode = "DUPLICATE_BLOCK_ID"

	// ─── Rendering ─────────────────────────────────────────────────────
	ErrRenderFailed ErrCode = "RENDER_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido."
	case ErrTokenExpired:
		return "Token de autenticação expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Você não tem permissão para acessar este recurso."
	case ErrNotExamAuthor:
		return "Você não é o autor desta prova."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Falha na validação. Verifique os dados enviados."
	case ErrInvalidID:
		return "Formato de ID inválido."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."

	// ─── Exam editing ──────────────────────────────────────────────────
	case ErrExamLocked:
		return "A prova já foi publicada e não pode mais ser editada."
	case ErrExamNotPublished:
		return "A prova ainda não foi publicada."
	case ErrWatermarkLocked:
		return "A marca d'água não pode ser movida, editada ou removida."
	case ErrQuestionLimit:
		return "A prova atingiu o limite de questões."
	case ErrRedactionLock:
		return "Provas com redação não aceitam outras questões."
	case ErrHeaderExists:
		return "A prova já possui um cabeçalho."
	case ErrBlockNotFound:
		return "Bloco não encontrado."
	case ErrInvalidBlockType:
		return "Tipo de bloco desconhecido."
	case ErrDuplicateBlock:
		return "Dois blocos não podem ter o mesmo identificador."

	// ─── Rendering ─────────────────────────────────────────────────────
	case ErrRenderFailed:
		return "Não foi possível gerar o documento. Tente novamente."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente mais tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Ocorreu um erro inesperado."
	}
}
