package asset

// DefaultConfig is the annotated configuration written by -write-config
const DefaultConfig = `# vi-danmaku configuration
# Environment variables DANMAKU_* and command line flags override these values

# Directory of *.xml BulletML patterns, empty uses the built-in samples
patterns_dir = ""

# "y-down" (screen) or "y-up" (math) axis handed to patterns
convention = "y-down"

# 0 picks a seed per session, any other value replays the same randomness
seed = 0

# Initial difficulty in [0, 1], exposed to patterns as $rank
rank = 0.5

tick_rate = 60
debug = false

[playfield]
width = 480
height = 640

[reload]
# "discard" drops a broken pattern, "preserve" keeps running the last good one
policy = "discard"
poll_interval = "10ms"
# Move the watch along when the selection changes after an edit
follow_selection = true

[editor]
# Launched detached with the pattern path appended, empty to edit elsewhere
command = []

[journal]
# SQLite reload history, empty disables
path = "logs/reloads.db"

[snapshot]
dir = "snapshots"

# Replace the sprite sheet, index order matters
# [[sprites]]
# glyph = "•"
# width = 8
# height = 8
# color = "#ffffff"

# Rebind keys, "none" unbinds
[keys]
# space = "pause"
# F5 = "reset"
`
