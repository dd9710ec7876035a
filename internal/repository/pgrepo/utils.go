package pgrepo

import (
	"fmt"
	"math"
)

// pagination переводит номер страницы (с 1) и размер страницы в LIMIT/OFFSET.
func pagination(page, pageSize uint) (limit int64, offset int64, err error) {
	if pageSize == 0 || pageSize > math.MaxInt32 {
		return 0, 0, fmt.Errorf("page size is out of range: %d", pageSize)
	}
	if page == 0 {
		page = 1
	}
	if page > math.MaxInt32 {
		return 0, 0, fmt.Errorf("page is out of range: %d", page)
	}
	return int64(pageSize), int64(page-1) * int64(pageSize), nil
}

func totalPages(total int64, pageSize uint) uint {
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return uint((total + size - 1) / size)
}
