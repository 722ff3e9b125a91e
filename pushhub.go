// Command pushhub relays push notifications to websocket subscribers.
//
//	pushhub -addr=0.0.0.0:3000
//
// Nothing is stored. A push is delivered to whoever is connected with the
// same token at that moment and then forgotten.
//
// Subscribe by opening a websocket with a token. The server answers with a
// text frame "connected" and pings every 30 seconds.
//
//	ws://localhost:3000/ws?token=abc
//
// Push by POSTing a form to the same token. msg is required; pusher, type,
// level and date are optional.
//
//	curl localhost:3000/push?token=abc -d msg=hello -d pusher=svc1
//
// Subscribers receive
//
//	{"pusher":"svc1","msg":"hello","type":null,"level":null,"date":null}
//
// A push to a token nobody has connected with answers 404. An empty msg
// answers 400. Each subscriber buffers up to 100 messages; when it falls
// further behind, its oldest messages are dropped.
//
// GET /?token=abc serves a page that subscribes to the token, and
// GET /metrics reports counters as JSON.
package main
