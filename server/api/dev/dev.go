// Package dev 提供瀏覽器版的遊玩面板 (/dev)，頁面直接呼叫 /v1 API。
//
// 注意：
//   - 這不是 production 介面，只給開發期手動試玩。
//   - 錯誤處理走 `httperr.Errs`（與 /v1 相同的 JSON 錯誤格式）。
package dev

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/server/httperr"
	"github.com/zintix-labs/hongbao/server/netsvr"
	"github.com/zintix-labs/hongbao/server/svrcfg"
)

func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/favicon.svg", favicon)
	svr.Get("/dev/meta", devMeta(cfg))
}

// devPageHTML 內嵌的遊玩面板 (single page)。
//
// UI 行為：
//   - 規則組由 /dev/meta 載入；按「開新牌局」呼叫 POST /v1/tables。
//   - 每次操作後以回傳的 TableState 重繪，另外每 300ms 輪詢一次 events。
//   - 409 (狀態機拒絕) 只顯示在訊息列，不視為錯誤。
const devPageHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>富貴險中求</title>
  <style>
    body { font-family: -apple-system,"PingFang TC","Noto Sans TC",sans-serif; background:#3b0a10; color:#fde68a; margin:0; }
    .wrap { max-width: 860px; margin: 24px auto; padding: 16px 20px; background:#7f1d1d; border:1px solid #b91c1c; border-radius:12px; }
    h1 { margin:0 0 12px; font-size:24px; letter-spacing:2px; }
    .row { display:flex; gap:8px; flex-wrap:wrap; align-items:center; margin:8px 0; }
    input, select { background:#450a0a; color:#fde68a; border:1px solid #b45309; border-radius:8px; padding:8px 10px; font-size:14px; }
    button { cursor:pointer; border:none; border-radius:8px; padding:8px 12px; font-weight:600; background:#f59e0b; color:#3b0a10; }
    button.alt { background:#450a0a; color:#fde68a; border:1px solid #b45309; }
    #balance { font-size:28px; font-weight:700; }
    #msg { min-height:20px; color:#fca5a5; }
    pre { background:#2a070b; border-radius:8px; padding:10px; max-height:260px; overflow:auto; font-size:12px; }
  </style>
</head>
<body>
<div class="wrap">
  <h1>🧧 富貴險中求</h1>
  <div class="row">
    <select id="rules"></select>
    <button id="btn-open">開新牌局</button>
    <span id="tid"></span>
  </div>
  <div class="row">餘額 <span id="balance">-</span> <span id="view"></span></div>
  <div class="row">
    <button class="alt" data-op="envelope">拆紅包</button>
    <select id="game"></select>
    <button class="alt" id="btn-enter">進入</button>
    <button class="alt" data-op="back">返回大廳</button>
    <button class="alt" data-op="restart">重新開始</button>
  </div>
  <div class="row">
    <input id="amount" type="number" min="1" value="50" style="width:100px" />
    <button class="alt" id="btn-bet">設定下注</button>
    <select id="category"><option value="low">小</option><option value="high">大</option><option value="triple">豹子</option></select>
    <button class="alt" id="btn-cat">選擇</button>
    <button data-op="start">開始</button>
    <button class="alt" data-op="again">再玩一次</button>
  </div>
  <div class="row">
    <input id="text" placeholder="回答 / 夢境" style="flex:1" />
    <button id="btn-answer">送出</button>
  </div>
  <div id="msg"></div>
  <pre id="state"></pre>
  <pre id="events"></pre>
</div>
<script>
let tid = '';
const $ = (id) => document.getElementById(id);

async function call(method, path, body) {
  const opt = { method, headers: { 'Content-Type': 'application/json' } };
  if (body) opt.body = JSON.stringify(body);
  const res = await fetch(path, opt);
  const data = res.status === 204 ? null : await res.json();
  if (!res.ok) { $('msg').textContent = (data && data.error) || res.statusText; return null; }
  $('msg').textContent = '';
  return data;
}

function draw(st) {
  if (!st) return;
  const t = st.table;
  $('balance').textContent = t.balance;
  $('view').textContent = t.view + (t.game ? ' / ' + t.game.kind + ' / ' + t.game.phase : '');
  $('game').innerHTML = (t.games || []).map(g => '<option>' + g + '</option>').join('');
  $('state').textContent = JSON.stringify(t, null, 2);
}

async function op(name, body) {
  if (!tid) { $('msg').textContent = '請先開新牌局'; return; }
  draw(await call('POST', '/v1/tables/' + tid + '/' + name, body));
}

async function poll() {
  if (tid) {
    const ev = await call('GET', '/v1/tables/' + tid + '/events');
    if (ev && ev.events.length) {
      $('events').textContent = ev.events.map(e => e.seq + ' ' + e.type + ' ' + JSON.stringify(e.data)).join('\n') + '\n' + $('events').textContent;
      const st = await call('GET', '/v1/tables/' + tid);
      draw(st);
    }
  }
  setTimeout(poll, 300);
}

async function loadMeta() {
  const meta = await call('GET', '/dev/meta');
  if (!meta) return;
  $('rules').innerHTML = meta.rules.map(r => '<option value="' + r.name + '"' + (r.name === meta.default ? ' selected' : '') + '>' + r.title + '</option>').join('');
}

$('btn-open').addEventListener('click', async () => {
  const st = await call('POST', '/v1/tables', { rules: $('rules').value });
  if (st) { tid = st.id; $('tid').textContent = tid; $('events').textContent = ''; draw(st); }
});
document.querySelectorAll('[data-op]').forEach(b => b.addEventListener('click', () => op(b.dataset.op)));
$('btn-enter').addEventListener('click', () => op('enter', { game: $('game').value }));
$('btn-bet').addEventListener('click', () => op('bet', { amount: parseInt($('amount').value, 10) }));
$('btn-cat').addEventListener('click', () => op('category', { category: $('category').value }));
$('btn-answer').addEventListener('click', () => op('answer', { text: $('text').value }));

loadMeta();
poll();
</script>
</body>
</html>`

func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(devPageHTML))
}

func favicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(faviconSVG))
}

// devMeta 回傳規則組清單 (dto.RulesList)。
func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg == nil || cfg.Hongbao == nil {
			httperr.Errs(w, errs.NewFatal("hongbao is required"))
			return
		}
		hb := cfg.Hongbao
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.RulesList{Default: hb.DefaultRules(), Rules: hb.Rules()})
	}
}

//go:embed favicon.svg
var faviconSVG string
