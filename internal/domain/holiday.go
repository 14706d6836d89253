package domain

import "time"

// Holiday 是法定节假日，月度工时核算时会从工作日中扣除
type Holiday struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
