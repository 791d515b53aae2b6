package catalog

// playerCSS contains shared CSS for the custom player chrome. Pages set
// --player-accent via their own CSS to customize the accent color.
const playerCSS = `
        .player-container {
            position: relative;
            background: #000;
            border-radius: 8px;
            overflow: hidden;
        }
        .player-container video,
        .player-container iframe {
            display: block;
            width: 100%;
            aspect-ratio: 16 / 9;
            border: 0;
            background: #000;
        }
        .player-overlay {
            position: absolute;
            top: 0;
            left: 0;
            right: 0;
            bottom: 0;
            display: flex;
            align-items: center;
            justify-content: center;
            cursor: pointer;
            z-index: 2;
        }
        .player-overlay.hidden { display: none; }
        .play-overlay-btn {
            width: 64px;
            height: 64px;
            border-radius: 50%;
            background: rgba(0, 0, 0, 0.6);
            border: none;
            color: #fff;
            font-size: 28px;
            cursor: pointer;
            display: flex;
            align-items: center;
            justify-content: center;
            backdrop-filter: blur(4px);
            transition: background 0.2s;
        }
        .play-overlay-btn:hover { background: rgba(0, 0, 0, 0.8); }
        .player-spinner {
            position: absolute;
            top: 50%;
            left: 50%;
            transform: translate(-50%, -50%);
            width: 48px;
            height: 48px;
            border: 4px solid rgba(255, 255, 255, 0.2);
            border-top-color: #fff;
            border-radius: 50%;
            animation: spin 0.8s linear infinite;
            z-index: 4;
            display: none;
            pointer-events: none;
        }
        .player-spinner.visible { display: block; }
        @keyframes spin { to { transform: translate(-50%, -50%) rotate(360deg); } }
        .player-error {
            position: absolute;
            top: 50%;
            left: 50%;
            transform: translate(-50%, -50%);
            text-align: center;
            color: #e2e8f0;
            font-size: 14px;
            z-index: 4;
            display: none;
        }
        .player-error.visible { display: block; }
        .player-error-icon { font-size: 32px; margin-bottom: 0.5rem; }
        .player-error button {
            margin-top: 0.75rem;
            padding: 0.4rem 1rem;
            border: 1px solid #475569;
            border-radius: 6px;
            background: transparent;
            color: #e2e8f0;
            cursor: pointer;
        }
        .player-error button:hover { border-color: var(--player-accent, #00b67a); }
        .player-controls {
            position: absolute;
            left: 0;
            right: 0;
            bottom: 0;
            display: flex;
            align-items: center;
            gap: 0.5rem;
            padding: 0.5rem 0.75rem;
            background: linear-gradient(transparent, rgba(0, 0, 0, 0.8));
            transition: opacity 0.25s;
            z-index: 3;
        }
        .player-controls.hidden { opacity: 0; pointer-events: none; }
        .ctrl-btn {
            background: none;
            border: none;
            color: #fff;
            font-size: 16px;
            cursor: pointer;
            padding: 0.25rem;
        }
        .ctrl-btn:hover { color: var(--player-accent, #00b67a); }
        .time-display {
            color: #cbd5e1;
            font-size: 0.75rem;
            font-variant-numeric: tabular-nums;
        }
        .seek-bar {
            position: relative;
            flex: 1;
            height: 16px;
            display: flex;
            align-items: center;
            cursor: pointer;
        }
        .seek-track {
            position: relative;
            width: 100%;
            height: 4px;
            border-radius: 2px;
            background: rgba(255, 255, 255, 0.25);
            overflow: hidden;
        }
        .seek-progress {
            position: absolute;
            left: 0;
            top: 0;
            bottom: 0;
            width: 0;
            background: var(--player-accent, #00b67a);
        }
        .volume-slider { width: 72px; accent-color: var(--player-accent, #00b67a); }
`

// playerControlsHTML is the shared markup for the custom controls. Rendered
// only for controllable sessions; passive embeds keep the platform chrome.
const playerControlsHTML = `
                <div class="player-overlay" id="player-overlay">
                    <button class="play-overlay-btn" id="play-overlay-btn" aria-label="Play">&#9654;</button>
                </div>
                <div class="player-spinner" id="player-spinner"></div>
                <div class="player-error" id="player-error">
                    <div class="player-error-icon">&#9888;</div>
                    <span id="player-error-text">Video failed to load</span>
                    <button id="player-fallback-btn" class="hidden">Open embedded player</button>
                </div>
                <div class="player-controls" id="player-controls">
                    <button class="ctrl-btn" id="play-btn" aria-label="Play">&#9654;</button>
                    <span class="time-display" id="time-current">0:00</span>
                    <div class="seek-bar" id="seek-bar">
                        <div class="seek-track">
                            <div class="seek-progress" id="seek-progress"></div>
                        </div>
                    </div>
                    <span class="time-display" id="time-duration">0:00</span>
                    <button class="ctrl-btn" id="mute-btn" aria-label="Mute">&#128266;</button>
                    <input type="range" class="volume-slider" id="volume-slider" min="0" max="100" value="100">
                    <button class="ctrl-btn" id="speed-btn" aria-label="Playback speed">1x</button>
                    <button class="ctrl-btn" id="fullscreen-btn" aria-label="Fullscreen">&#9974;</button>
                </div>
`

// sessionJS wires one player page to its playback session. It expects
// sessionConfig ({contentId, apiBase}) to be declared before it runs. The
// page relays raw player events to the session, polls state and page-bound
// commands back, and reports user activity for the auto-hide timer.
const sessionJS = `
        var session = null;
        var pendingEvents = [];
        var player = document.getElementById('player');
        var container = document.getElementById('player-container');
        var controls = document.getElementById('player-controls');
        var overlay = document.getElementById('player-overlay');
        var overlayBtn = document.getElementById('play-overlay-btn');
        var playBtn = document.getElementById('play-btn');
        var seekBar = document.getElementById('seek-bar');
        var seekProgress = document.getElementById('seek-progress');
        var timeCurrent = document.getElementById('time-current');
        var timeDuration = document.getElementById('time-duration');
        var muteBtn = document.getElementById('mute-btn');
        var volumeSlider = document.getElementById('volume-slider');
        var speedBtn = document.getElementById('speed-btn');
        var fullscreenBtn = document.getElementById('fullscreen-btn');
        var spinner = document.getElementById('player-spinner');
        var errorOverlay = document.getElementById('player-error');
        var errorText = document.getElementById('player-error-text');
        var fallbackBtn = document.getElementById('player-fallback-btn');
        var ytPlayer = null;
        var speeds = [0.5, 0.75, 1, 1.25, 1.5, 2];

        function api(path, method, body) {
            return fetch(sessionConfig.apiBase + path, {
                method: method || 'GET',
                headers: { 'Content-Type': 'application/json' },
                body: body === undefined ? undefined : JSON.stringify(body)
            }).then(function(res) {
                if (!res.ok) throw new Error('api ' + res.status);
                return res.status === 204 ? null : res.json();
            });
        }

        function relay(ev) {
            pendingEvents.push(ev);
        }

        function flushEvents() {
            if (!session || pendingEvents.length === 0) return Promise.resolve(null);
            var batch = pendingEvents;
            pendingEvents = [];
            return api('/api/sessions/' + session.sessionId + '/events', 'POST', batch)
                .then(render)
                .catch(function() {});
        }

        function command(name, value) {
            if (!session) return;
            api('/api/sessions/' + session.sessionId + '/command', 'POST', { name: name, value: value || 0 })
                .then(render)
                .catch(function() {});
        }

        function activity() {
            if (!session) return;
            api('/api/sessions/' + session.sessionId + '/activity', 'POST', null).catch(function() {});
        }

        function fmtTime(s) {
            if (!isFinite(s) || isNaN(s)) return '0:00';
            s = Math.floor(s);
            if (s >= 3600) return Math.floor(s/3600) + ':' + ('0'+Math.floor((s%3600)/60)).slice(-2) + ':' + ('0'+(s%60)).slice(-2);
            return Math.floor(s/60) + ':' + ('0'+(s%60)).slice(-2);
        }

        function render(state) {
            if (!state || !controls) return;
            var playing = state.status === 'playing' || state.status === 'buffering';
            playBtn.innerHTML = playing ? '&#9646;&#9646;' : '&#9654;';
            overlay.classList.toggle('hidden', playing);
            controls.classList.toggle('hidden', !state.controlsVisible);
            spinner.classList.toggle('visible', state.status === 'loading' || state.status === 'buffering');
            timeCurrent.textContent = fmtTime(state.currentTime);
            timeDuration.textContent = fmtTime(state.duration);
            if (state.duration > 0) {
                seekProgress.style.width = Math.min(state.currentTime / state.duration * 100, 100) + '%';
            }
            muteBtn.innerHTML = state.muted ? '&#128264;' : '&#128266;';
            volumeSlider.value = state.muted ? 0 : state.volume * 100;
            speedBtn.textContent = state.rate + 'x';
            if (state.status === 'error' && state.lastError) {
                errorText.textContent = errorMessage(state.lastError);
                errorOverlay.classList.add('visible');
                fallbackBtn.className = state.lastError.canFallbackToEmbed ? '' : 'hidden';
            } else {
                errorOverlay.classList.remove('visible');
            }
        }

        function errorMessage(err) {
            switch (err.kind) {
                case 'unresolvable_source': return 'This video can’t be played here.';
                case 'network_error': return 'Network error while loading the video.';
                case 'retries_exhausted': return 'The stream failed in every available format.';
                case 'autoplay_blocked': return 'Autoplay was blocked. Press play to start.';
                default: return 'Video failed to load.';
            }
        }

        function execute(cmd) {
            if (ytPlayer) { executeYouTube(cmd); return; }
            if (!player || player.tagName !== 'VIDEO') return;
            switch (cmd.name) {
                case 'play': player.play().catch(function() { relay({ kind: 'autoplayblocked' }); }); break;
                case 'pause': player.pause(); break;
                case 'seek': player.currentTime = cmd.value; break;
                case 'set_volume': player.volume = cmd.value; break;
                case 'set_muted': player.muted = true; break;
                case 'set_unmuted': player.muted = false; break;
                case 'set_rate': player.playbackRate = cmd.value; break;
                case 'swap_source': player.src = cmd.url; player.load(); break;
                case 'enter_fullscreen': enterFullscreen(); break;
                case 'exit_fullscreen': exitFullscreen(); break;
            }
        }

        function executeYouTube(cmd) {
            switch (cmd.name) {
                case 'play': ytPlayer.playVideo(); break;
                case 'pause': ytPlayer.pauseVideo(); break;
                case 'seek': ytPlayer.seekTo(cmd.value, true); break;
                case 'set_volume': ytPlayer.setVolume(cmd.value); break;
                case 'set_muted': ytPlayer.mute(); break;
                case 'set_unmuted': ytPlayer.unMute(); break;
                case 'set_rate': ytPlayer.setPlaybackRate(cmd.value); break;
                case 'swap_source': window.location.reload(); break;
                case 'enter_fullscreen': enterFullscreen(); break;
                case 'exit_fullscreen': exitFullscreen(); break;
            }
        }

        function enterFullscreen() {
            if (container.requestFullscreen) container.requestFullscreen().catch(function(){});
            else if (container.webkitRequestFullscreen) container.webkitRequestFullscreen();
            else if (player && player.webkitEnterFullscreen) player.webkitEnterFullscreen();
        }
        function exitFullscreen() {
            if (document.exitFullscreen) document.exitFullscreen().catch(function(){});
            else if (document.webkitExitFullscreen) document.webkitExitFullscreen();
        }
        function isFullscreen() {
            return document.fullscreenElement || document.webkitFullscreenElement || false;
        }

        function bindNativeEvents() {
            player.addEventListener('loadedmetadata', function() { relay({ kind: 'loadedmetadata', duration: player.duration }); });
            player.addEventListener('durationchange', function() { relay({ kind: 'durationchange', duration: player.duration }); });
            player.addEventListener('timeupdate', function() { relay({ kind: 'timeupdate', time: player.currentTime }); });
            player.addEventListener('play', function() { relay({ kind: 'play' }); });
            player.addEventListener('playing', function() { relay({ kind: 'playing' }); });
            player.addEventListener('pause', function() { relay({ kind: 'pause' }); });
            player.addEventListener('waiting', function() { relay({ kind: 'waiting' }); });
            player.addEventListener('ended', function() { relay({ kind: 'ended' }); });
            player.addEventListener('ratechange', function() { relay({ kind: 'ratechange', rate: player.playbackRate }); });
            player.addEventListener('volumechange', function() { relay({ kind: 'volumechange', volume: player.volume, muted: player.muted }); });
            player.addEventListener('error', function() {
                var code = player.error ? player.error.code : 0;
                relay({ kind: 'mediaerror', code: code });
                flushEvents();
            });
        }

        function loadYouTubeAPI(onReady) {
            if (window.YT && window.YT.Player) { onReady(); return; }
            var prev = window.onYouTubeIframeAPIReady;
            window.onYouTubeIframeAPIReady = function() {
                if (prev) prev();
                onReady();
            };
            if (!document.querySelector('script[src="https://www.youtube.com/iframe_api"]')) {
                var tag = document.createElement('script');
                tag.src = 'https://www.youtube.com/iframe_api';
                document.head.appendChild(tag);
            }
        }

        function bindYouTube(videoId) {
            loadYouTubeAPI(function() {
                ytPlayer = new YT.Player('player', {
                    videoId: videoId,
                    playerVars: { controls: 0, rel: 0, modestbranding: 1, playsinline: 1, disablekb: 1 },
                    events: {
                        onReady: function() {
                            relay({ kind: 'playerready' });
                            flushEvents();
                        },
                        onStateChange: function(e) {
                            relay({ kind: 'playerstate', code: e.data });
                            relay({ kind: 'playersample', time: ytPlayer.getCurrentTime(), duration: ytPlayer.getDuration() });
                            flushEvents();
                        },
                        onError: function(e) {
                            relay({ kind: 'playererror', code: e.data });
                            flushEvents();
                        }
                    }
                });
                setInterval(function() {
                    if (ytPlayer && ytPlayer.getCurrentTime) {
                        relay({ kind: 'playersample', time: ytPlayer.getCurrentTime(), duration: ytPlayer.getDuration() });
                    }
                }, 500);
            });
        }

        function bindControls() {
            function toggle() { command('toggle'); }
            playBtn.addEventListener('click', toggle);
            overlayBtn.addEventListener('click', toggle);
            overlay.addEventListener('click', function(e) { if (e.target === overlay) toggle(); });
            seekBar.addEventListener('click', function(e) {
                var rect = seekBar.getBoundingClientRect();
                var pct = Math.max(0, Math.min(1, (e.clientX - rect.left) / rect.width));
                var dur = parseDuration();
                if (dur > 0) command('seek', pct * dur);
            });
            muteBtn.addEventListener('click', function() {
                command(volumeSlider.value > 0 ? 'mute' : 'unmute');
            });
            volumeSlider.addEventListener('input', function() {
                command('set_volume', volumeSlider.value / 100);
            });
            speedBtn.addEventListener('click', function() {
                var current = parseFloat(speedBtn.textContent) || 1;
                var next = speeds[(speeds.indexOf(current) + 1) % speeds.length];
                command('set_rate', next);
            });
            fullscreenBtn.addEventListener('click', function() {
                if (isFullscreen()) exitFullscreen();
                else enterFullscreen();
            });
            document.addEventListener('fullscreenchange', function() {
                relay({ kind: 'fullscreenchange', fullscreen: !!isFullscreen() });
            });
            fallbackBtn.addEventListener('click', function() {
                command('fallback_to_embed');
            });
            container.addEventListener('mousemove', activity);
            container.addEventListener('touchstart', activity, { passive: true });
            document.addEventListener('keydown', function(e) {
                if (e.target.tagName === 'INPUT' || e.target.tagName === 'TEXTAREA') return;
                activity();
                if (e.key === ' ' || e.key === 'k' || e.key === 'K') { toggle(); e.preventDefault(); }
                if (e.key === 'm' || e.key === 'M') command(volumeSlider.value > 0 ? 'mute' : 'unmute');
                if (e.key === 'f' || e.key === 'F') {
                    if (isFullscreen()) exitFullscreen();
                    else enterFullscreen();
                }
            });
        }

        function parseDuration() {
            var parts = timeDuration.textContent.split(':').map(Number);
            if (parts.length === 3) return parts[0] * 3600 + parts[1] * 60 + parts[2];
            if (parts.length === 2) return parts[0] * 60 + parts[1];
            return 0;
        }

        function pump() {
            if (!session) return;
            flushEvents();
            api('/api/sessions/' + session.sessionId + '/commands')
                .then(function(body) { (body.commands || []).forEach(execute); })
                .catch(function() {});
            api('/api/sessions/' + session.sessionId).then(function(body) { render(body.state); }).catch(function() {});
        }

        api('/api/sessions', 'POST', { contentId: sessionConfig.contentId })
            .then(function(created) {
                session = created;
                render(created.state);
                if (created.source.platform === 'youtube') {
                    bindYouTube(created.source.id);
                } else if (player && player.tagName === 'VIDEO') {
                    bindNativeEvents();
                    if (created.device.nativeControlsOnly) {
                        player.setAttribute('controls', '');
                        controls.style.display = 'none';
                        overlay.style.display = 'none';
                    }
                }
                if (controls && created.source.controllable) bindControls();
                setInterval(pump, 500);
                window.addEventListener('beforeunload', function() {
                    navigator.sendBeacon && navigator.sendBeacon(
                        sessionConfig.apiBase + '/api/sessions/' + session.sessionId + '/close',
                        new Blob([], { type: 'text/plain' }));
                });
            })
            .catch(function() {
                if (errorText) {
                    errorText.textContent = 'Could not start playback.';
                    errorOverlay.classList.add('visible');
                }
            });
`
