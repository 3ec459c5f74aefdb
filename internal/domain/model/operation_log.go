package model

// OpLogEvent 写操作事件，HTTP 中间件发送到 kafka，consumer 消费落库
type OpLogEvent struct {
	ActionName string   `json:"action_name"`
	Path       string   `json:"path"`
	Target     string   `json:"target,omitempty"`
	Method     string   `json:"method"`
	Status     int      `json:"status"`
	LatencyMS  int64    `json:"latency_ms"`
	IP         string   `json:"ip"`
	Time       string   `json:"time"`
	TraceID    string   `json:"trace_id,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// OperationLog operation_logs 表
type OperationLog struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ActionName string `gorm:"column:action_name" json:"action_name"`
	Path       string `gorm:"column:path" json:"path"`
	Target     string `gorm:"column:target" json:"target"`
	Method     string `gorm:"column:method" json:"method"`
	Status     int    `gorm:"column:status" json:"status"`
	LatencyMS  int64  `gorm:"column:latency_ms" json:"latency_ms"`
	IP         string `gorm:"column:ip" json:"ip"`
	TraceID    string `gorm:"column:trace_id" json:"trace_id"`
	Errors     string `gorm:"column:errors" json:"errors"`
	AddTime    int64  `gorm:"column:add_time" json:"add_time"`
}

func (OperationLog) TableName() string { return "operation_logs" }
