package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE 코드
const (
	pgInvalidTextRepresentation = "22P02" // 잘못된 uuid 문자열 등
	pgUniqueViolation           = "23505"
)

// ClassifyPersistence 저장소(GORM/Mongo) 에러를 도메인 Kind로 변환
// op 는 로그/메시지용 작업 이름 (예: "find cart", "save cart")
func ClassifyPersistence(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	// 1. 레코드 없음
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return Wrap(KindCartNotFound, err, "")
	}

	// 2. PostgreSQL 에러 코드
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepresentation:
			return Wrap(KindCartNotFound, err, "")
		case pgUniqueViolation:
			return Wrap(KindPersistenceFailure, err, "cart already exists")
		}
	}

	// 3. 타임아웃/취소
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindPersistenceFailure, err, "cart storage timed out")
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return Wrap(KindPersistenceFailure, err, "cart storage unavailable")
	}

	// 4. 기본 저장소 오류
	return Wrap(KindPersistenceFailure, err, defaultPersistenceMessage(op))
}

func defaultPersistenceMessage(op string) string {
	opLower := strings.ToLower(op)

	switch {
	case strings.Contains(opLower, "create"):
		return "failed to create cart"
	case strings.Contains(opLower, "save"), strings.Contains(opLower, "update"):
		return "failed to update cart"
	case strings.Contains(opLower, "find"), strings.Contains(opLower, "get"):
		return "failed to load cart"
	case strings.Contains(opLower, "count"):
		return "failed to count carts"
	}
	return "cart storage failure"
}
