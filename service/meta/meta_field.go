package meta

// MetaField 枚举词汇表条目，供目标字段、任务状态与导出格式等枚举复用
type MetaField struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
}
