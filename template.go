package main

import (
	"html/template"
)

type templateArgs struct {
	Token string
}

// webTemplate is a minimal subscriber: it connects to /ws with the token
// from the query string and lists every push it receives.
var webTemplate = template.Must(template.New("webTemplate").Parse(`<!DOCTYPE html>
<html>
<head>
<title>pushhub {{.Token}}</title>
<script type="text/javascript">
    var token = {{.Token}};

    function formatTitle(p) {
        var parts = [];
        if (p.pusher) parts.push(p.pusher);
        if (p.type) parts.push(p.type);
        if (p.date) parts.push("@" + p.date);
        return parts.length > 0 ? parts.join(" ") : "Notification";
    }

    var levels = ["critical", "info", "success", "upsell", "warning"];

    function appendLog(title, body, level) {
        var log = document.getElementById("log");
        var item = document.createElement("div");
        item.className = "item";
        if (level) {
            item.className += " " + (levels.indexOf(level) >= 0 ? level : "info");
            var label = document.createElement("span");
            label.className = "level";
            label.textContent = level;
            item.appendChild(label);
        }
        var b = document.createElement("b");
        b.textContent = title;
        item.appendChild(b);
        if (body) {
            item.appendChild(document.createTextNode(" " + body));
        }
        log.appendChild(item);
        log.scrollTop = log.scrollHeight;
    }

    window.onload = function() {
        if (!token) {
            appendLog("Add ?token=... to the address to subscribe.");
            return;
        }
        if (!window["WebSocket"]) {
            appendLog("Your browser does not support WebSockets.");
            return;
        }
        var scheme = location.protocol === "https:" ? "wss://" : "ws://";
        var conn = new WebSocket(scheme + location.host + "/ws?token=" + encodeURIComponent(token));
        conn.onclose = function() {
            appendLog("Connection closed.");
        };
        conn.onmessage = function(evt) {
            if (evt.data === "connected") {
                appendLog("Connected.");
                return;
            }
            try {
                var p = JSON.parse(evt.data);
                appendLog(formatTitle(p), p.msg, p.level);
            } catch (e) {
                appendLog(evt.data);
            }
        };
    };
</script>
<style type="text/css">
body {
    margin: 0;
    padding: 0.5em;
    background: gray;
}

#log {
    background: white;
    padding: 0.5em;
    position: absolute;
    top: 2.5em;
    left: 0.5em;
    right: 0.5em;
    bottom: 0.5em;
    overflow: auto;
}

.item { padding: 0.2em 0.4em; border-left: 4px solid transparent; }
.item .level { font-size: 0.8em; text-transform: uppercase; margin-right: 0.5em; }
.critical { border-color: #d63638; }
.info { border-color: #2271b1; }
.success { border-color: #00a32a; }
.upsell { border-color: #9b51e0; }
.warning { border-color: #dba617; }
</style>
</head>
<body>
<h3>Pushes for {{.Token}}</h3>
<div id="log"></div>
</body>
</html>
`))
