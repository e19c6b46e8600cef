package record

// Attachment 有序的 string→any 映射，Record 的唯一结构化附件通道
//
// 语义对齐插入有序字典：键唯一；重复 Set 覆盖值但保留首次插入的位置，
// 保证渲染输出的键序稳定可 diff。
//
// 非并发安全：附件在富化层单线程构建，随 Record 构造被拷贝后只读。
type Attachment struct {
	keys []string
	vals map[string]any
}

// NewAttachment 创建空附件
func NewAttachment() *Attachment {
	return &Attachment{vals: make(map[string]any)}
}

// Set 写入键值，重复键覆盖值并保留原插入位置
func (a *Attachment) Set(key string, value any) {
	if a.vals == nil {
		a.vals = make(map[string]any)
	}
	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = value
}

// Get 按键读取
func (a *Attachment) Get(key string) (any, bool) {
	if a == nil || a.vals == nil {
		return nil, false
	}
	v, ok := a.vals[key]
	return v, ok
}

// Has 报告键是否存在
func (a *Attachment) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Len 返回键数量
func (a *Attachment) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys 返回插入序键列表的拷贝
func (a *Attachment) Keys() []string {
	if a == nil || len(a.keys) == 0 {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Range 按插入序遍历，fn 返回 false 时停止
func (a *Attachment) Range(fn func(key string, value any) bool) {
	if a == nil {
		return
	}
	for _, k := range a.keys {
		if !fn(k, a.vals[k]) {
			return
		}
	}
}

// Merge 将 other 的键值并入（last-write-wins，位置规则同 Set）
func (a *Attachment) Merge(other *Attachment) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		a.Set(k, other.vals[k])
	}
}

// Clone 返回深一层拷贝（键序与值浅拷贝）
//
// nil 接收者返回空附件，便于调用方无条件 Clone。
func (a *Attachment) Clone() *Attachment {
	cloned := NewAttachment()
	if a == nil {
		return cloned
	}
	cloned.keys = make([]string, len(a.keys))
	copy(cloned.keys, a.keys)
	for k, v := range a.vals {
		cloned.vals[k] = v
	}
	return cloned
}
