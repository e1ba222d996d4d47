package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트는 message 대신 이 코드로 분기해야 함

const (
	// ==================== 장바구니 (CART_) ====================
	CartNotFound         = "CART_NOT_FOUND"          // 장바구니 없음
	CartProductNotFound  = "CART_PRODUCT_NOT_FOUND"  // 장바구니에 해당 상품 없음
	CartDuplicateProduct = "CART_DUPLICATE_PRODUCT"  // 동일 상품 중복

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"    // 잘못된 입력
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY" // 수량은 1 이상

	// ==================== 라우팅 (ROUTE_) ====================
	RouteNotFound = "ROUTE_NOT_FOUND" // 존재하지 않는 경로

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // 저장소 오류
)
