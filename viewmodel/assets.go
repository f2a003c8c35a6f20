package viewmodel

import (
	"context"
	"sort"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/util"
)

// AssetList is what the fungibles and collectibles pages show.
type AssetList struct {
	Bitcoin model.BtcBalance
	Assets  []model.AssetDescriptor
	// Cached is set when the list comes from the response cache and a
	// fresh one is on its way.
	Cached bool
}

// TotalBalanceWithSuffix is the bitcoin balance including unconfirmed
// coins, e.g. "1500 SATS".
func (l *AssetList) TotalBalanceWithSuffix(unit amount.Unit) string {
	return amount.FormatSats(l.Bitcoin.VanillaFuture, unit)
}

func (l *AssetList) SpendableBalanceWithSuffix(unit amount.Unit) string {
	return amount.FormatSats(l.Bitcoin.VanillaSpendable, unit)
}

// AssetsVM backs the fungibles page (RGB20) and the collectibles page
// (RGB25).
type AssetsVM struct {
	Base
	kind model.AssetKind

	byID map[string]model.AssetDescriptor

	AssetLoaded event.Emitter[AssetList]
}

func NewAssets(d *Deps, kind model.AssetKind) *AssetsVM {
	page, name := nav.Fungibles, "fungibles"
	if kind == model.RGB25 {
		page, name = nav.Collectibles, "collectibles"
	}
	return &AssetsVM{
		Base:        newBase(d, name, page),
		kind:        kind,
		byID:        make(map[string]model.AssetDescriptor),
		AssetLoaded: event.NewEmitter[AssetList](name + ".AssetLoaded"),
	}
}

func (vm *AssetsVM) Kind() model.AssetKind { return vm.kind }

func (vm *AssetsVM) Activate() { vm.GetAssets(false) }

// Asset looks up an asset of the last list.
func (vm *AssetsVM) Asset(id string) (model.AssetDescriptor, bool) {
	a, ok := vm.byID[id]
	return a, ok
}

func (vm *AssetsVM) schema() string {
	if vm.kind == model.RGB25 {
		return nodeclient.SchemaCfa
	}
	return nodeclient.SchemaNia
}

func (vm *AssetsVM) visible(all []model.AssetDescriptor) []model.AssetDescriptor {
	hidden := settings.GetOr(vm.d.Settings, settings.HiddenAssets, nil)
	out := util.Filter(all, func(a model.AssetDescriptor) bool {
		return a.Kind == vm.kind && !util.Contains(hidden, a.AssetID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out
}

// GetAssets loads the asset list. A hard refresh first asks the node to
// refresh pending transfers and drops the cached lists; hard refreshes
// requested while one runs collapse into a single one run afterwards.
func (vm *AssetsVM) GetAssets(hard bool) er.R {
	key := string(vm.kind)
	c := vm.d.Cache
	if !hard && !vm.Busy() && c != nil {
		var cached AssetList
		if ok, err := c.Get(cache.Assets, key, &cached); err != nil {
			log.Warnf("Asset cache: %s", err.Message())
		} else if ok {
			cached.Cached = true
			cached.Assets = vm.visible(cached.Assets)
			vm.AssetLoaded.Emit(cached)
		}
	}
	client := vm.d.Client
	schema := vm.schema()
	policy := Coalesce
	if hard {
		policy = Replay
	}
	return vm.run(task{
		op:     "get_assets",
		policy: policy,
		fn: ctxFn(func(ctx context.Context) (AssetList, er.R) {
			if hard {
				if c != nil {
					if err := c.Invalidate(cache.Assets); err != nil {
						log.Warnf("Asset cache: %s", err.Message())
					}
				}
				if err := client.RefreshTransfers(ctx); err != nil {
					return AssetList{}, err
				}
			}
			assets, err := client.ListAssets(ctx, schema)
			if err != nil {
				return AssetList{}, err
			}
			bal, err := client.BtcBalance(ctx, hard)
			if err != nil {
				return AssetList{}, err
			}
			out := AssetList{Bitcoin: bal, Assets: assets}
			if c != nil {
				if err := c.Put(cache.Assets, key, &out); err != nil {
					log.Warnf("Asset cache: %s", err.Message())
				}
			}
			return out, nil
		}),
		done: func(v interface{}) {
			l := value[AssetList](v)
			if hard {
				vm.byID = make(map[string]model.AssetDescriptor)
			}
			for _, a := range l.Assets {
				vm.byID[a.AssetID] = a
			}
			l.Assets = vm.visible(l.Assets)
			vm.AssetLoaded.Emit(l)
		},
	})
}

// Hide removes an asset from the lists until it is shown again.
func (vm *AssetsVM) Hide(assetID string) er.R {
	hidden := settings.GetOr(vm.d.Settings, settings.HiddenAssets, nil)
	if util.Contains(hidden, assetID) {
		return nil
	}
	if err := settings.Set(vm.d.Settings, settings.HiddenAssets, append(hidden, assetID)); err != nil {
		return vm.check("hide", err)
	}
	vm.info(vm.d.tr(i18n.AssetHidden))
	return nil
}

// Open goes to the detail page of an asset of the last list.
func (vm *AssetsVM) Open(assetID string) {
	a, ok := vm.byID[assetID]
	if !ok {
		log.Warnf("No asset [%s] in the list", assetID)
		return
	}
	vm.goTo(nav.ToRGBDetail(nav.RGBDetailParams{
		AssetID:   a.AssetID,
		AssetName: a.Name,
		Ticker:    a.Ticker,
		Kind:      a.Kind,
		Precision: a.Precision,
		ImagePath: a.ImagePath,
	}))
}
