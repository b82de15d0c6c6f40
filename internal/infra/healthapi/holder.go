package healthapi

import "sync/atomic"

// Holder 持有当前生效的远端客户端，设置变更时整体替换。
// 读取方拿到的是不可变的 *Client 快照，避免在请求中途看到半新半旧的配置。
type Holder struct {
	current atomic.Pointer[Client]
}

// NewHolder 构造客户端持有器，client 可以为 nil（尚未配置令牌时）。
func NewHolder(client *Client) *Holder {
	h := &Holder{}
	if client != nil {
		h.current.Store(client)
	}
	return h
}

// Get 返回当前客户端，未配置时返回 nil。
func (h *Holder) Get() *Client {
	if h == nil {
		return nil
	}
	return h.current.Load()
}

// Swap 替换当前客户端，用于设置流程保存新的服务器地址或令牌之后。
func (h *Holder) Swap(client *Client) {
	if h == nil || client == nil {
		return
	}
	h.current.Store(client)
}
