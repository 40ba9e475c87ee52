package oracle

import "context"

// Stub 以函數欄位組成的 Oracle；未設定的欄位回傳 ErrUnavailable。
// 給離線模式、模擬器與測試注入固定行為。
type Stub struct {
	Judge    func(ctx context.Context, question, answer string) (AuntieVerdict, error)
	Dream    func(ctx context.Context, dream string) (DreamVerdict, error)
	Question func(ctx context.Context) (RelativeQuestion, error)
	Relative func(ctx context.Context, description, answer string) (RelativeVerdict, error)
}

func (s *Stub) JudgeAnswer(ctx context.Context, question, answer string) (AuntieVerdict, error) {
	if s.Judge == nil {
		return AuntieVerdict{}, ErrUnavailable
	}
	return s.Judge(ctx, question, answer)
}

func (s *Stub) InterpretDream(ctx context.Context, dream string) (DreamVerdict, error) {
	if s.Dream == nil {
		return DreamVerdict{}, ErrUnavailable
	}
	return s.Dream(ctx, dream)
}

func (s *Stub) RelativeQuestion(ctx context.Context) (RelativeQuestion, error) {
	if s.Question == nil {
		return RelativeQuestion{}, ErrUnavailable
	}
	return s.Question(ctx)
}

func (s *Stub) JudgeRelative(ctx context.Context, description, answer string) (RelativeVerdict, error) {
	if s.Relative == nil {
		return RelativeVerdict{}, ErrUnavailable
	}
	return s.Relative(ctx, description, answer)
}
