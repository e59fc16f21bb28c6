package dto

// PageView is the data a page template needs. Rendering happens elsewhere.
type PageView struct {
	Page     string        `json:"page"`
	Title    string        `json:"title"`
	User     *UserResponse `json:"user"`
	Error    string        `json:"error,omitempty"`
	Username string        `json:"username,omitempty"`
	Chat     *ChatView     `json:"chat,omitempty"`
}

// ChatView is what the protected page needs to mount the chat widget.
type ChatView struct {
	ReleaseID      string `json:"releaseId"`
	EmbedScriptURL string `json:"embedScriptUrl"`
	JWT            string `json:"jwt"`
	Mock           bool   `json:"mock"`
}
