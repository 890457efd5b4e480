package platform

import "context"

// TiktokAdapter is a deliberate stub. The platform is registered so an
// unsupported post fails cleanly with a recorded error instead of being
// silently dropped.
// TODO: implement the Content Posting API direct-post flow once the app
// passes TikTok's audit.
type TiktokAdapter struct {
	creds *Credentials
}

func NewTiktokAdapter(creds *Credentials) *TiktokAdapter {
	return &TiktokAdapter{creds: creds}
}

func (t *TiktokAdapter) ValidateCredentials(ctx context.Context) bool {
	return false
}

func (t *TiktokAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	return failure("tiktok publishing not yet implemented")
}
