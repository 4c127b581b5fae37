package entity

// Options gathers an entity's per-instance configuration knobs,
// realized here as constructor-time functional options rather than
// build tags or preprocessor constants: a constructor validated once,
// at startup, satisfies the "never touched on the hot path" property a
// systems port would get from compile-time constants instead.
type Options struct {
	inboxSize     int
	scratchSize   int
	maxMixins     int
	maxMiddleware int
	hsmEnabled    bool
	timestampsOn  bool
	assertionHook func(Assertion)
}

// Assertion describes a debug-build-only engine inconsistency: a
// condition the engine detects but, without an installed hook, simply
// treats as "stay" rather than surfacing.
type Assertion struct {
	Entity  *Entity
	Message string
}

// Option configures an Entity at construction time.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		inboxSize:     DefaultInboxSize,
		scratchSize:   DefaultScratchSize,
		maxMixins:     DefaultMaxMixins,
		maxMiddleware: DefaultMaxMiddleware,
		hsmEnabled:    true,
		timestampsOn:  true,
	}
}

// WithInboxSize sets INBOX_SIZE for this entity. Default 8.
func WithInboxSize(n int) Option {
	return func(o *Options) { o.inboxSize = n }
}

// WithScratchSize sets SCRATCHPAD_SIZE for this entity. Default 64.
func WithScratchSize(n int) Option {
	return func(o *Options) { o.scratchSize = n }
}

// WithMaxMixins sets MAX_MIXINS_PER_ENTITY. Default 4.
func WithMaxMixins(n int) Option {
	return func(o *Options) { o.maxMixins = n }
}

// WithMaxMiddleware sets MAX_MIDDLEWARE. Default 4.
func WithMaxMiddleware(n int) Option {
	return func(o *Options) { o.maxMiddleware = n }
}

// WithHSM toggles ENABLE_HSM. Default true.
func WithHSM(enabled bool) Option {
	return func(o *Options) { o.hsmEnabled = enabled }
}

// WithTimestamps toggles ENABLE_TIMESTAMPS. Default true.
func WithTimestamps(enabled bool) Option {
	return func(o *Options) { o.timestampsOn = enabled }
}

// WithAssertions installs a debug assertion hook. Leaving this unset
// (the default) is release-build behavior: the engine detects the
// same conditions but silently treats them as "stay" instead of
// invoking a hook.
func WithAssertions(hook func(Assertion)) Option {
	return func(o *Options) { o.assertionHook = hook }
}

const (
	// DefaultScratchSize is SCRATCHPAD_SIZE's default.
	DefaultScratchSize = 64
	// DefaultMaxMixins is MAX_MIXINS_PER_ENTITY's default.
	DefaultMaxMixins = 4
	// DefaultMaxMiddleware is MAX_MIDDLEWARE's default.
	DefaultMaxMiddleware = 4
)
